// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestRawTermiosClearsCookedModeBits(t *testing.T) {
	t.Parallel()
	var cooked unix.Termios
	cooked.Iflag = unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF
	cooked.Oflag = unix.OPOST
	cooked.Lflag = unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	cooked.Cflag = unix.CSIZE | unix.PARENB
	cooked.Cc[unix.VLNEXT] = 22
	cooked.Cc[unix.VSUSP] = 26

	raw := rawTermios(cooked)

	if raw.Iflag != 0 {
		t.Errorf("Iflag = %#o, want 0", raw.Iflag)
	}
	if raw.Oflag&unix.OPOST != 0 {
		t.Errorf("OPOST still set")
	}
	if raw.Lflag&(unix.ECHO|unix.ECHONL|unix.ICANON|unix.ISIG|unix.IEXTEN) != 0 {
		t.Errorf("Lflag cooked bits still set: %#o", raw.Lflag)
	}
	if got := raw.Cflag & (unix.CSIZE | unix.PARENB); got != unix.CS8 {
		t.Errorf("Cflag CSIZE|PARENB bits = %#o, want CS8 only (%#o)", got, unix.CS8)
	}
	if raw.Cflag&unix.CS8 == 0 {
		t.Errorf("CS8 not set")
	}
	if raw.Cc[unix.VLNEXT] != 0 {
		t.Errorf("VLNEXT = %d, want 0 (disabled)", raw.Cc[unix.VLNEXT])
	}
	if raw.Cc[unix.VMIN] != 1 {
		t.Errorf("VMIN = %d, want 1", raw.Cc[unix.VMIN])
	}
	if raw.Cc[unix.VTIME] != 0 {
		t.Errorf("VTIME = %d, want 0", raw.Cc[unix.VTIME])
	}
	if raw.Cc[unix.VSUSP] != 26 {
		t.Errorf("VSUSP was mutated: got %d, want unchanged 26", raw.Cc[unix.VSUSP])
	}
}
