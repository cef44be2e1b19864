// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package master

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/attachd/attachd/internal/channel"
	"github.com/attachd/attachd/internal/ptyproc"
	"github.com/attachd/attachd/internal/wire"
)

// ErrExecFailed wraps a failure to start the child program. Callers
// (cmd/attachd) map it to exit code 127, the same code the original
// dtachez surfaces through its exec-failure status pipe.
var ErrExecFailed = errors.New("master: could not start child")

const bufSize = 4096

// Config describes one master invocation: the session to serve and the
// child to run under its PTY.
type Config struct {
	Session       string
	Argv          []string
	WaitAttach    bool
	RedrawDefault byte
	InitialSize   wire.Winsize
	Logger        *slog.Logger
}

// Master owns one session's rendezvous channel, client table, and PTY.
// A Master must not be reused across Run calls.
type Master struct {
	cfg Config
	log *slog.Logger

	rendezvous channel.Pair
	pty        *ptyproc.PTY
	table      table

	winsize          wire.Winsize
	markerAttached   bool
	ptyReaderRunning bool
}

// New builds a Master for cfg. Run performs all I/O; New does not touch
// the filesystem or fork anything.
func New(cfg Config) *Master {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RedrawDefault == wire.RedrawUnspec {
		cfg.RedrawDefault = wire.RedrawNone
	}
	return &Master{cfg: cfg, log: cfg.Logger, winsize: cfg.InitialSize}
}

type clientEvent struct {
	index  int
	packet wire.Packet
	err    error
}

// Run creates the rendezvous channel, starts the child under a PTY, and
// runs the event loop until the child exits, a fatal signal arrives, or
// ctx is canceled. It always attempts teardown (unlinking every live
// channel and the rendezvous pair) before returning.
func (m *Master) Run(ctx context.Context) error {
	if err := ensureMarkerFile(m.cfg.Session); err != nil {
		return err
	}

	rendezvous, err := channel.Create(m.cfg.Session, false)
	if err != nil {
		return fmt.Errorf("master: create rendezvous: %w", err)
	}
	m.rendezvous = rendezvous
	defer m.teardown()

	pty, err := ptyproc.Start(m.cfg.Argv, m.winsize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExecFailed, err)
	}
	m.pty = pty

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 8)
	signal.Notify(sig, syscall.SIGCHLD, syscall.SIGINT, syscall.SIGTERM)
	signal.Ignore(syscall.SIGPIPE, syscall.SIGHUP, syscall.SIGTTIN, syscall.SIGTTOU, syscall.SIGXFSZ)
	defer signal.Stop(sig)

	admissionCh := make(chan byte)
	admissionErrCh := make(chan error, 1)
	go m.readRendezvous(ctx, admissionCh, admissionErrCh)

	clientCh := make(chan clientEvent)
	ptyDataCh := make(chan []byte)
	ptyErrCh := make(chan error, 1)

	if !m.cfg.WaitAttach {
		m.startPTYReader(ctx, ptyDataCh, ptyErrCh)
	}

	m.log.Info("master started", "session", m.cfg.Session, "pid", pty.Pid(), "waitattach", m.cfg.WaitAttach)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case s := <-sig:
			switch s {
			case syscall.SIGCHLD:
				// The PTY read loop observes the child's exit as EOF; a
				// bare SIGCHLD (e.g. from a grandchild) needs no action.
			case syscall.SIGINT, syscall.SIGTERM:
				m.log.Info("master exiting on signal", "signal", s)
				return nil
			}

		case b := <-admissionCh:
			m.handleAdmission(b, clientCh)
			m.syncMarker()

		case err := <-admissionErrCh:
			return fmt.Errorf("master: rendezvous read: %w", err)

		case ev := <-clientCh:
			m.handleClientEvent(ev)
			m.syncMarker()
			if !m.ptyReaderRunning && m.table.hasAttachedClient() {
				m.startPTYReader(ctx, ptyDataCh, ptyErrCh)
			}

		case data := <-ptyDataCh:
			m.fanOut(data)

		case err := <-ptyErrCh:
			if errors.Is(err, io.EOF) {
				m.log.Info("child exited", "session", m.cfg.Session)
				return nil
			}
			return fmt.Errorf("master: pty read: %w", err)
		}
	}
}

func (m *Master) startPTYReader(ctx context.Context, dataCh chan<- []byte, errCh chan<- error) {
	m.ptyReaderRunning = true
	go readLoop(ctx, m.pty.Master, bufSize, dataCh, errCh)
}

func (m *Master) syncMarker() {
	attached := m.table.hasAttachedClient()
	if attached == m.markerAttached {
		return
	}
	if err := syncMarker(m.cfg.Session, attached); err != nil {
		m.log.Warn("marker update failed", "error", err)
		return
	}
	m.markerAttached = attached
}

// teardown unlinks the rendezvous channel and every still-live slot's
// channel, and closes the PTY master. It is called exactly once, via
// defer in Run, regardless of how Run returns.
func (m *Master) teardown() {
	for i := range m.table.entries {
		if s := m.table.release(i); s != nil {
			s.cancel()
			s.pair.Close()
			if err := channel.Unlink(channel.SlotName(m.cfg.Session, i)); err != nil {
				m.log.Warn("teardown: unlink slot failed", "index", i, "error", err)
			}
		}
	}
	m.rendezvous.Close()
	if err := channel.Unlink(m.cfg.Session); err != nil {
		m.log.Warn("teardown: unlink rendezvous failed", "error", err)
	}
	if m.pty != nil {
		m.pty.Close()
	}
}

func ensureMarkerFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("master: create marker %s: %w", path, err)
	}
	return f.Close()
}

// readLoop reads up to size bytes at a time from file, delivering
// each non-empty read to dataCh and terminating on the first error
// (io.EOF included) by sending it to errCh.
func readLoop(ctx context.Context, file *os.File, size int, dataCh chan<- []byte, errCh chan<- error) {
	buf := make([]byte, size)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case dataCh <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}
	}
}

func (m *Master) readRendezvous(ctx context.Context, out chan<- byte, errs chan<- error) {
	buf := make([]byte, 1)
	for {
		n, err := m.rendezvous.Mosi.Read(buf)
		if err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
			return
		}
		if n != 1 {
			continue
		}
		select {
		case out <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

var errShortRead = errors.New("master: short read from client")

func readClient(ctx context.Context, index int, file *os.File, out chan<- clientEvent) {
	buf := make([]byte, wire.Length)
	for {
		n, err := file.Read(buf)
		if err != nil {
			select {
			case out <- clientEvent{index: index, err: err}:
			case <-ctx.Done():
			}
			return
		}
		if n != wire.Length {
			select {
			case out <- clientEvent{index: index, err: errShortRead}:
			case <-ctx.Done():
			}
			return
		}
		pkt, err := wire.Decode(buf[:n])
		if err != nil {
			continue
		}
		select {
		case out <- clientEvent{index: index, packet: pkt}:
		case <-ctx.Done():
			return
		}
	}
}
