// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

// Package ptyproc allocates a pseudo-terminal and execs a child program
// under it, giving the master everything it needs to drive that child
// as the single shared terminal of a session: the master-side fd to
// read and write, resize, and a way to deliver a signal to whichever
// process group currently owns the foreground.
package ptyproc
