// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package master

import (
	"syscall"

	"github.com/attachd/attachd/internal/wire"
)

// handleClientEvent applies one decoded packet, or drops the slot if
// its reader goroutine reported the client gone. A dead client's
// filesystem endpoints are usually already gone by this point, because
// the attacher's signal handler sends a release request before it
// exits; this path is the fallback for a client that disappeared
// without releasing (killed, crashed).
func (m *Master) handleClientEvent(ev clientEvent) {
	if ev.err != nil {
		m.releaseSlot(ev.index)
		return
	}

	s := m.table.get(ev.index)
	if s == nil {
		// The slot was released between the reader goroutine's send and
		// this dispatch; nothing to do.
		return
	}

	switch ev.packet.Type {
	case wire.Push:
		m.handlePush(ev.packet)
	case wire.Attach:
		s.attached = true
	case wire.Detach:
		s.attached = false
	case wire.Winch:
		m.applyWinsize(ev.packet.Winsize())
	case wire.Redraw:
		m.handleRedraw(ev.packet)
	}
}

func (m *Master) handlePush(pkt wire.Packet) {
	if int(pkt.Len) > wire.PayloadLength {
		return
	}
	if _, err := m.pty.Master.Write(pkt.Payload[:pkt.Len]); err != nil {
		m.log.Debug("push write to pty failed", "error", err)
	}
}

func (m *Master) applyWinsize(size wire.Winsize) {
	m.winsize = size
	if err := m.pty.SetWinsize(size); err != nil {
		m.log.Warn("set winsize failed", "error", err)
	}
}

func (m *Master) handleRedraw(pkt wire.Packet) {
	method := pkt.Len
	if method == wire.RedrawUnspec {
		method = m.cfg.RedrawDefault
	}
	if method == wire.RedrawNone {
		return
	}

	m.applyWinsize(pkt.Winsize())

	switch method {
	case wire.RedrawCtrlL:
		eligible, err := m.pty.NoEchoCharMode()
		if err != nil {
			m.log.Debug("redraw eligibility check failed", "error", err)
			return
		}
		if eligible {
			if _, err := m.pty.Master.Write([]byte{0x0C}); err != nil {
				m.log.Debug("redraw ctrl-l write failed", "error", err)
			}
		}
	case wire.RedrawWinch:
		if err := m.pty.SignalForeground(syscall.SIGWINCH); err != nil {
			m.log.Debug("redraw sigwinch failed", "error", err)
		}
	}
}
