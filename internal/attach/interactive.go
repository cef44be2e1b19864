// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/attachd/attachd/internal/wire"
)

const (
	clearScreen = "\x1b[H\x1b[J"
	showCursor  = "\x1b[?25h"
)

// RunInteractive puts in into raw mode, attaches, and relays bytes
// between in/out and the slot until detach, EOF, or a fatal signal.
// It returns the process exit code the caller should use.
func (c *Client) RunInteractive(ctx context.Context, in, out *os.File) (int, error) {
	fd := int(in.Fd())
	origTerm, err := getTermios(fd)
	if err != nil {
		return 1, err
	}
	restore := func() {
		setTermios(fd, origTerm)
		fmt.Fprint(out, showCursor)
	}
	defer restore()

	fatalSig := make(chan os.Signal, 4)
	signal.Notify(fatalSig, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(fatalSig)

	winchSig := make(chan os.Signal, 4)
	signal.Notify(winchSig, syscall.SIGWINCH)
	defer signal.Stop(winchSig)

	signal.Ignore(syscall.SIGPIPE, syscall.SIGXFSZ)

	vsuspChar := origTerm.Cc[unix.VSUSP]

	raw := rawTermios(*origTerm)
	if err := setTermios(fd, &raw); err != nil {
		return 1, err
	}
	fmt.Fprint(out, clearScreen)

	banner := newBanners(termenv.NewOutput(out))

	attach := wire.Encode(wire.NewAttach())
	if _, err := c.slot.Mosi.Write(attach[:]); err != nil {
		return 1, fmt.Errorf("attach: send attach: %w", err)
	}
	if err := c.sendRedraw(fd, c.cfg.RedrawMethod); err != nil {
		return 1, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	misoCh := make(chan []byte)
	misoErrCh := make(chan error, 1)
	go readLoop(ctx, c.slot.Miso, bufSize, misoCh, misoErrCh)

	stdinCh := make(chan []byte)
	stdinErrCh := make(chan error, 1)
	go readLoop(ctx, in, bufSize, stdinCh, stdinErrCh)

	winChanged := false

	for {
		var stop bool
		var code int
		var loopErr error

		select {
		case <-ctx.Done():
			return 1, ctx.Err()

		case sig := <-fatalSig:
			c.Release()
			if sig == syscall.SIGHUP || sig == syscall.SIGINT {
				banner.detached()
			} else {
				banner.gotSignal(int(sig.(syscall.Signal)))
			}
			return 1, nil

		case data := <-misoCh:
			if _, err := out.Write(data); err != nil {
				return 1, fmt.Errorf("attach: write stdout: %w", err)
			}

		case err := <-misoErrCh:
			if errors.Is(err, io.EOF) {
				banner.eof()
				return 0, nil
			}
			return 1, err

		case data := <-stdinCh:
			stop, code, loopErr = c.handleStdin(fd, vsuspChar, data, &winChanged, banner)
			if stop {
				return code, loopErr
			}

		case err := <-stdinErrCh:
			return 1, fmt.Errorf("attach: read stdin: %w", err)

		case <-winchSig:
			winChanged = true
		}

		if winChanged {
			winChanged = false
			if err := c.sendWinch(fd); err != nil {
				c.log.Warn("send winch failed", "error", err)
			}
		}
	}
}

// handleStdin applies one OS read's worth of raw keyboard input, one
// PayloadLength-sized packet at a time: suspend, detach, form-feed-
// triggers-WINCH, or a verbatim PUSH. A single read(2) on a tty can
// return far more than one packet's worth of bytes (a paste, a fast
// burst of keystrokes), so the suspend/detach/form-feed check runs
// against the first byte of every chunk, not just the first byte of
// the whole read — matching the original's per-packet check, where
// every stdin read is itself sized to one packet. It returns
// stop=true when the interactive loop should end.
func (c *Client) handleStdin(fd int, vsuspChar byte, data []byte, winChanged *bool, banner banners) (stop bool, code int, err error) {
	if len(data) == 0 {
		return true, 1, fmt.Errorf("attach: empty read from stdin")
	}

	for len(data) > 0 {
		n := len(data)
		if n > wire.PayloadLength {
			n = wire.PayloadLength
		}
		chunk := data[:n]
		data = data[n:]
		first := chunk[0]

		if !c.cfg.NoSuspend && first == vsuspChar {
			c.suspend(fd)
			continue
		}
		if first == c.cfg.DetachChar {
			c.Release()
			banner.detached()
			return true, 0, nil
		}
		if first == 0x0C {
			*winChanged = true
			continue
		}

		push := wire.Encode(wire.NewPush(chunk))
		if _, err := c.slot.Mosi.Write(push[:]); err != nil {
			return true, 1, fmt.Errorf("attach: send push: %w", err)
		}
	}
	return false, 0, nil
}

// suspendSelf stops the current process with SIGTSTP. It is a package
// variable, rather than an inline unix.Kill call, so tests can replace
// it to observe a suspend was triggered without actually stopping the
// test process.
var suspendSelf = func() {
	unix.Kill(os.Getpid(), unix.SIGTSTP)
}

// suspend detaches, restores cooked mode, stops the process with
// SIGTSTP, and on resume restores raw mode and reattaches with a fresh
// redraw — the same sequence a shell's job control performs around
// ^Z, replicated here since the attacher, not the shell, owns the
// terminal while attached.
func (c *Client) suspend(fd int) {
	detach := wire.Encode(wire.NewDetach())
	c.slot.Mosi.Write(detach[:])

	orig, err := getTermios(fd)
	if err == nil {
		setTermios(fd, orig)
	}

	suspendSelf()

	if orig != nil {
		raw := rawTermios(*orig)
		setTermios(fd, &raw)
	}
	attach := wire.Encode(wire.NewAttach())
	c.slot.Mosi.Write(attach[:])
	c.sendRedraw(fd, c.cfg.RedrawMethod)
}

func (c *Client) sendRedraw(fd int, method byte) error {
	size, err := currentWinsize(fd)
	if err != nil {
		return err
	}
	redraw := wire.Encode(wire.NewRedraw(method, size))
	if _, err := c.slot.Mosi.Write(redraw[:]); err != nil {
		return fmt.Errorf("attach: send redraw: %w", err)
	}
	return nil
}

func (c *Client) sendWinch(fd int) error {
	size, err := currentWinsize(fd)
	if err != nil {
		return err
	}
	winch := wire.Encode(wire.NewWinch(size))
	if _, err := c.slot.Mosi.Write(winch[:]); err != nil {
		return fmt.Errorf("attach: send winch: %w", err)
	}
	return nil
}

func currentWinsize(fd int) (wire.Winsize, error) {
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return wire.Winsize{}, fmt.Errorf("attach: get winsize: %w", err)
	}
	return wire.Winsize{Rows: uint16(rows), Cols: uint16(cols)}, nil
}

