// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package master

import (
	"context"

	"github.com/attachd/attachd/internal/channel"
	"github.com/attachd/attachd/internal/wire"
)

// handleAdmission consumes one rendezvous byte: a create request
// allocates a slot and replies with its index (or a full-server
// sentinel); a release request frees the named slot, silently ignoring
// a stale or mismatched index.
func (m *Master) handleAdmission(b byte, clientCh chan clientEvent) {
	if wire.IsCreateRequest(b) {
		index := m.createSlot(clientCh)
		reply := byte(wire.MaxSlots)
		if index >= 0 {
			reply = byte(index)
		}
		if _, err := m.rendezvous.Miso.Write([]byte{reply}); err != nil {
			m.log.Warn("admission: reply write failed", "error", err)
		}
		return
	}

	index := wire.ReleaseIndex(b)
	m.releaseSlot(index)
}

func (m *Master) createSlot(clientCh chan clientEvent) int {
	index := m.table.lowestFree()
	if index < 0 {
		return -1
	}

	name := channel.SlotName(m.cfg.Session, index)
	pair, err := channel.Create(name, true)
	if err != nil {
		m.log.Warn("admission: create slot channel failed", "index", index, "error", err)
		return -1
	}

	slotCtx, cancel := context.WithCancel(context.Background())
	m.table.reserve(index, pair, cancel)
	go readClient(slotCtx, index, pair.Mosi, clientCh)
	m.log.Debug("client admitted", "index", index)
	return index
}

func (m *Master) releaseSlot(index int) {
	s := m.table.release(index)
	if s == nil {
		return
	}
	s.cancel()
	s.pair.Close()
	if err := channel.Unlink(channel.SlotName(m.cfg.Session, index)); err != nil {
		m.log.Warn("release: unlink failed", "index", index, "error", err)
	}
	m.log.Debug("client released", "index", index)
}
