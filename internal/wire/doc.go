// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the on-the-wire formats shared by the attachd
// master and its attaching clients: the fixed-size client→master packet
// used on a per-client channel, and the single-byte admission request
// used on the rendezvous channel.
//
// The master→client direction carries no framing at all — raw PTY output
// bytes, verbatim. Only the client→master direction and the rendezvous
// handshake use the formats in this package.
//
// Everything here is host-local. There is no attempt at cross-host wire
// compatibility; [Winsize] is attachd's own fixed 8-byte layout, not the
// platform's native struct winsize.
package wire
