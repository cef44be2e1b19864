// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package ptyproc

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// SignalForeground delivers sig to whichever process group currently
// owns the pty's controlling terminal in the foreground — the group a
// real terminal driver would deliver a key-generated signal (^C, ^Z, a
// SIGWINCH from a real resize) to, rather than to the child's own pid.
//
// If the foreground process group cannot be determined (no foreground
// group, or the ioctl fails because the child has already exited) the
// signal is sent to the child's own process group instead, which is
// also its pid: Start creates the child as its own session leader, so
// its pgid equals its pid until it spawns and backgrounds children of
// its own.
func (p *PTY) SignalForeground(sig syscall.Signal) error {
	pgid, err := unix.IoctlGetInt(int(p.Master.Fd()), unix.TIOCGPGRP)
	if err != nil || pgid <= 0 {
		pgid = p.cmd.Process.Pid
	}
	if err := syscall.Kill(-pgid, sig); err != nil {
		return fmt.Errorf("ptyproc: signal foreground group %d: %w", pgid, err)
	}
	return nil
}
