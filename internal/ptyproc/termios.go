// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package ptyproc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// NoEchoCharMode reports whether the pty's slave is currently in
// no-echo, character-at-a-time mode: ECHO and ICANON both clear and
// VMIN == 1. This is the eligibility test spec.md ties to the ctrl-L
// redraw method — writing a form feed to a cooked, echoing shell
// prompt would just show up as a stray character rather than trigger
// a repaint, so that method is only used when a full-screen program
// has taken over line discipline.
//
// A TCGETS on the master fd of a Linux pty returns the slave's
// termios, the same trick the master fd's TIOCGPGRP/TIOCSWINSZ calls
// rely on: no separate slave fd needs to stay open past exec.
func (p *PTY) NoEchoCharMode() (bool, error) {
	term, err := unix.IoctlGetTermios(int(p.Master.Fd()), unix.TCGETS)
	if err != nil {
		return false, fmt.Errorf("ptyproc: get termios: %w", err)
	}
	noEcho := term.Lflag&(unix.ECHO|unix.ICANON) == 0
	charAtATime := term.Cc[unix.VMIN] == 1
	return noEcho && charAtATime, nil
}
