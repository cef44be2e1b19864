// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		packet Packet
	}{
		{name: "push", packet: NewPush([]byte("hello"))},
		{name: "push empty", packet: NewPush(nil)},
		{name: "push exactly payload length", packet: NewPush(bytes.Repeat([]byte("x"), PayloadLength))},
		{name: "attach", packet: NewAttach()},
		{name: "detach", packet: NewDetach()},
		{name: "winch", packet: NewWinch(Winsize{Rows: 40, Cols: 120, XPixel: 0, YPixel: 0})},
		{name: "redraw ctrl-l", packet: NewRedraw(RedrawCtrlL, Winsize{Rows: 24, Cols: 80})},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			encoded := Encode(test.packet)
			decoded, err := Decode(encoded[:])
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded != test.packet {
				t.Errorf("round trip mismatch: got %+v, want %+v", decoded, test.packet)
			}
		})
	}
}

func TestDecodeWrongLength(t *testing.T) {
	t.Parallel()
	if _, err := Decode(make([]byte, Length-1)); err == nil {
		t.Fatal("expected error for short buffer")
	}
	if _, err := Decode(make([]byte, Length+1)); err == nil {
		t.Fatal("expected error for long buffer")
	}
}

func TestPushTruncatesOversizedPayload(t *testing.T) {
	t.Parallel()
	data := bytes.Repeat([]byte("y"), PayloadLength+5)
	packet := NewPush(data)
	if packet.Len != PayloadLength {
		t.Errorf("Len = %d, want %d", packet.Len, PayloadLength)
	}
	if !bytes.Equal(packet.Payload[:], data[:PayloadLength]) {
		t.Errorf("payload not truncated to the first %d bytes", PayloadLength)
	}
}

func TestWinsizeRoundTrip(t *testing.T) {
	t.Parallel()
	want := Winsize{Rows: 51, Cols: 211, XPixel: 640, YPixel: 480}
	packet := NewWinch(want)
	got := packet.Winsize()
	if got != want {
		t.Errorf("Winsize() = %+v, want %+v", got, want)
	}
}

func TestRedrawCarriesMethodInLen(t *testing.T) {
	t.Parallel()
	packet := NewRedraw(RedrawWinch, Winsize{Rows: 1, Cols: 1})
	if packet.Len != RedrawWinch {
		t.Errorf("Len = %d, want RedrawWinch (%d)", packet.Len, RedrawWinch)
	}
}
