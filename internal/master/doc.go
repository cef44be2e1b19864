// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

// Package master implements attachd's supervisor process: it owns one
// pseudo-terminal and a child running under it, accepts and releases
// client slots over a well-known rendezvous channel, and fans PTY
// output out to every attached client without letting a slow client
// hold up the rest.
//
// The C ancestor this is modeled on runs a single thread around one
// blocking select() over every live fd. Go replaces that with a
// reactor goroutine that owns all mutable state without locking, fed
// by one reader goroutine per fd over a fan-in channel — the same
// number of logical suspension points, expressed with channels and
// goroutines instead of a readiness bitmask.
package master
