// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package wire

// createBit marks an admission request as "allocate a new slot" rather
// than "release an existing one."
const createBit = 1 << 7

// MaxSlots is the number of client slots a master maintains (indices 0
// through MaxSlots-1). An admission reply of MaxSlots or greater means
// the server is full.
const MaxSlots = 127

// EncodeCreateRequest returns the single admission byte a client sends
// on the rendezvous channel to request a new slot.
func EncodeCreateRequest() byte { return createBit }

// EncodeReleaseRequest returns the single admission byte a client sends
// to release the slot it was assigned. index must be less than MaxSlots;
// callers that have a valid assigned index always satisfy this.
func EncodeReleaseRequest(index int) byte { return byte(index) & (createBit - 1) }

// IsCreateRequest reports whether an admission byte is a create request
// (high bit set) as opposed to a release request.
func IsCreateRequest(b byte) bool { return b&createBit != 0 }

// ReleaseIndex extracts the slot index named by a release request's low
// seven bits.
func ReleaseIndex(b byte) int { return int(b &^ createBit) }

// IsFull reports whether an admission reply index indicates the server
// had no free slot.
func IsFull(index int) bool { return index >= MaxSlots }
