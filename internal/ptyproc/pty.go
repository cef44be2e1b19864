// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package ptyproc

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"

	"github.com/attachd/attachd/internal/wire"
)

// PTY is a running child process attached to one pseudo-terminal's
// master side. The master owns Master for as long as the child lives;
// closing it (or the child exiting) ends the session.
type PTY struct {
	Master *os.File
	cmd    *exec.Cmd
}

// Start allocates a pseudo-terminal, sets it to size, and execs argv
// with that terminal as its controlling tty, standard streams, and
// session leader. argv must have at least one element.
//
// If the exec itself fails (argv[0] not found, permission denied, and
// so on) Start returns that error directly: os/exec already performs
// the synchronous pipe handshake between the forked child and this
// goroutine that the original dtachez implements by hand with a
// close-on-exec status pipe in master.cpp's init_pty, so no separate
// status-pipe plumbing is needed here. Callers map a non-nil error from
// Start to the same exit code (127) the original reserves for "could
// not run the child."
func Start(argv []string, size wire.Winsize) (*PTY, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("ptyproc: empty argv")
	}

	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("ptyproc: open pty: %w", err)
	}
	defer slave.Close()

	if err := setWinsize(master, size); err != nil {
		master.Close()
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		master.Close()
		return nil, fmt.Errorf("ptyproc: exec %s: %w", argv[0], err)
	}

	return &PTY{Master: master, cmd: cmd}, nil
}

// Pid returns the child process's pid.
func (p *PTY) Pid() int { return p.cmd.Process.Pid }

// Wait blocks until the child exits and returns its process state. The
// master does not call it; it ends its session on PTY EOF instead.
func (p *PTY) Wait() (*os.ProcessState, error) {
	err := p.cmd.Wait()
	return p.cmd.ProcessState, err
}

// SetWinsize applies a new terminal size to the pty's master side,
// which the kernel propagates to the child as SIGWINCH.
func (p *PTY) SetWinsize(size wire.Winsize) error {
	return setWinsize(p.Master, size)
}

// Close closes the master side of the pty. With no client and no
// pending writer the child typically receives SIGHUP on its next
// terminal access, but callers that want a clean shutdown should signal
// the foreground process group directly instead of relying on that.
func (p *PTY) Close() error {
	return p.Master.Close()
}

func setWinsize(master *os.File, size wire.Winsize) error {
	err := pty.Setsize(master, &pty.Winsize{
		Rows: size.Rows,
		Cols: size.Cols,
		X:    size.XPixel,
		Y:    size.YPixel,
	})
	if err != nil {
		return fmt.Errorf("ptyproc: set winsize: %w", err)
	}
	return nil
}
