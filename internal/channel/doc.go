// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel implements attachd's local byte-pipe transport: named
// FIFO pairs derived from a session name, created idempotently, opened
// in the direction and blocking mode each side needs.
//
// A [Pair] has two files named "{name}_miso" (master→client) and
// "{name}_mosi" (client→master). The master side of every pair — the
// rendezvous pair and every per-client pair — opens both files
// read/write, so a write into either FIFO always has a reader reference
// and returns EAGAIN (on a non-blocking pair) rather than raising
// SIGPIPE when no client is present. The client side opens miso
// read-only and mosi write-only, each in blocking mode.
package channel
