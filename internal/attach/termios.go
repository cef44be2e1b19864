// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// getTermios and setTermios go straight through TCGETS/TCSETS rather
// than golang.org/x/term's MakeRaw, because the suspend character
// (VSUSP) needs to survive the transition to raw mode readably: this
// package snapshots orig_term before touching anything and reads
// Cc[unix.VSUSP] back out of it later, something MakeRaw's opaque
// saved state does not expose.
func getTermios(fd int) (*unix.Termios, error) {
	term, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("attach: get termios: %w", err)
	}
	return term, nil
}

func setTermios(fd int, term *unix.Termios) error {
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, term); err != nil {
		return fmt.Errorf("attach: set termios: %w", err)
	}
	return nil
}

// rawTermios returns a copy of term with every bit spec.md's client
// raw-mode step names cleared or set, matching cfmakeraw's traditional
// definition plus VLNEXT disabled and a one-byte-at-a-time read policy.
func rawTermios(term unix.Termios) unix.Termios {
	raw := term
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VLNEXT] = 0
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	return raw
}
