// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

// Package attach implements the short-lived attacher side of a
// session: the rendezvous handshake that claims a client slot, raw
// terminal handling, and the interactive and push-mode I/O loops that
// forward a real terminal (or a pipe) into that slot.
package attach
