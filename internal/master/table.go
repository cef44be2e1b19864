// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package master

import (
	"context"

	"github.com/attachd/attachd/internal/channel"
	"github.com/attachd/attachd/internal/wire"
)

// slot is one entry of the master's fixed client table. A nil pointer
// in table.entries marks a free slot; a non-nil one is live.
type slot struct {
	pair     channel.Pair
	attached bool
	cancel   context.CancelFunc
}

// table is the fixed 127-slot client table. Indices are stable for the
// life of a slot: they appear on the wire as the admission reply and
// must never be reused while a client believes it still holds one.
//
// Allocation picks the lowest free index. dtachez's own scan conflates
// the free-index search with its live-client counter in a way that
// does not always pick the lowest free index; spec.md calls this out
// as an open question and recommends "lowest free index" as the
// intended semantics, which is what this table implements.
type table struct {
	entries [wire.MaxSlots]*slot
	count   int
}

// lowestFree returns the lowest free index, or -1 if the table is full.
// Callers use it before creating a slot's filesystem endpoints, since
// the index is baked into their names.
func (t *table) lowestFree() int {
	for i := range t.entries {
		if t.entries[i] == nil {
			return i
		}
	}
	return -1
}

// reserve installs a live slot at index, which must currently be free.
func (t *table) reserve(index int, pair channel.Pair, cancel context.CancelFunc) {
	t.entries[index] = &slot{pair: pair, cancel: cancel}
	t.count++
}

// release frees index i, if live, returning the slot that was there so
// the caller can close its fds and unlink its files. Returns nil if the
// index was already free or out of range.
func (t *table) release(i int) *slot {
	if i < 0 || i >= len(t.entries) || t.entries[i] == nil {
		return nil
	}
	s := t.entries[i]
	t.entries[i] = nil
	t.count--
	return s
}

// get returns the slot at i, or nil if free or out of range.
func (t *table) get(i int) *slot {
	if i < 0 || i >= len(t.entries) {
		return nil
	}
	return t.entries[i]
}

// hasAttachedClient reports whether any live slot has attached == true.
func (t *table) hasAttachedClient() bool {
	for _, s := range t.entries {
		if s != nil && s.attached {
			return true
		}
	}
	return false
}

// forEachAttached calls fn for every live, attached slot in index order.
func (t *table) forEachAttached(fn func(index int, s *slot)) {
	for i, s := range t.entries {
		if s != nil && s.attached {
			fn(i, s)
		}
	}
}
