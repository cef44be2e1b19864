// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "fmt"

// Packet type constants for the client→master control protocol.
const (
	Push   byte = 0
	Attach byte = 1
	Detach byte = 2
	Winch  byte = 3
	Redraw byte = 4
)

// Redraw methods, carried in a Redraw packet's Len field in place of a
// payload length.
const (
	RedrawUnspec byte = 0
	RedrawNone   byte = 1
	RedrawCtrlL  byte = 2
	RedrawWinch  byte = 3
)

// WinsizeLength is the size in bytes of an encoded Winsize.
const WinsizeLength = 8

// PayloadLength is the size of a packet's payload region: always
// sizeof(Winsize), regardless of how many bytes are actually meaningful.
// PUSH packets that carry fewer than PayloadLength bytes of keyboard
// input still occupy the full region; unused bytes are zero.
const PayloadLength = WinsizeLength

// Length is the fixed size of an encoded packet on the wire: one type
// byte, one length byte, and the payload region.
const Length = 2 + PayloadLength

// Winsize is attachd's wire encoding of a terminal size. It mirrors the
// layout of POSIX struct winsize (rows, columns, then pixel width and
// height) but is defined independently so the wire format never depends
// on host struct padding.
type Winsize struct {
	Rows   uint16
	Cols   uint16
	XPixel uint16
	YPixel uint16
}

// Packet is a single client→master control message. Type selects the
// interpretation of Len and Payload; see the master package for
// dispatch. Packet is always exactly Length bytes on the wire.
type Packet struct {
	Type    byte
	Len     byte
	Payload [PayloadLength]byte
}

// NewPush builds a PUSH packet carrying up to PayloadLength bytes of raw
// input. data longer than PayloadLength is truncated — callers read
// input in PayloadLength-sized chunks specifically to avoid this.
func NewPush(data []byte) Packet {
	var packet Packet
	packet.Type = Push
	n := len(data)
	if n > PayloadLength {
		n = PayloadLength
	}
	packet.Len = byte(n)
	copy(packet.Payload[:], data[:n])
	return packet
}

// NewAttach builds an ATTACH packet.
func NewAttach() Packet { return Packet{Type: Attach} }

// NewDetach builds a DETACH packet.
func NewDetach() Packet { return Packet{Type: Detach} }

// NewWinch builds a WINCH packet carrying the given terminal size.
func NewWinch(size Winsize) Packet {
	packet := Packet{Type: Winch}
	putWinsize(&packet.Payload, size)
	return packet
}

// NewRedraw builds a REDRAW packet carrying a redraw method (in Len) and
// the current terminal size.
func NewRedraw(method byte, size Winsize) Packet {
	packet := Packet{Type: Redraw, Len: method}
	putWinsize(&packet.Payload, size)
	return packet
}

// Winsize decodes the packet's payload as a Winsize. Valid for WINCH and
// REDRAW packets.
func (p Packet) Winsize() Winsize {
	return Winsize{
		Rows:   uint16(p.Payload[0]) | uint16(p.Payload[1])<<8,
		Cols:   uint16(p.Payload[2]) | uint16(p.Payload[3])<<8,
		XPixel: uint16(p.Payload[4]) | uint16(p.Payload[5])<<8,
		YPixel: uint16(p.Payload[6]) | uint16(p.Payload[7])<<8,
	}
}

func putWinsize(payload *[PayloadLength]byte, size Winsize) {
	payload[0] = byte(size.Rows)
	payload[1] = byte(size.Rows >> 8)
	payload[2] = byte(size.Cols)
	payload[3] = byte(size.Cols >> 8)
	payload[4] = byte(size.XPixel)
	payload[5] = byte(size.XPixel >> 8)
	payload[6] = byte(size.YPixel)
	payload[7] = byte(size.YPixel >> 8)
}

// Encode serializes the packet into its fixed Length-byte wire form.
func Encode(p Packet) [Length]byte {
	var out [Length]byte
	out[0] = p.Type
	out[1] = p.Len
	copy(out[2:], p.Payload[:])
	return out
}

// Decode parses a Length-byte wire buffer into a Packet. buf must be
// exactly Length bytes; shorter reads are a protocol-level "peer gone"
// condition handled by the caller, not by Decode.
func Decode(buf []byte) (Packet, error) {
	if len(buf) != Length {
		return Packet{}, fmt.Errorf("wire: packet must be %d bytes, got %d", Length, len(buf))
	}
	var packet Packet
	packet.Type = buf[0]
	packet.Len = buf[1]
	copy(packet.Payload[:], buf[2:])
	return packet, nil
}
