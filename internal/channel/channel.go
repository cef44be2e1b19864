// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fifoMode is the permission mode for every FIFO attachd creates. 0600
// keeps the channel private to the invoking user — the protocol trusts
// the channel precisely because nothing else can open it.
const fifoMode = 0o600

// Pair is a master's or client's view of one named channel pair: the
// miso file (master→client) and the mosi file (client→master).
type Pair struct {
	Miso *os.File
	Mosi *os.File
}

// Close closes both files in the pair. Errors from the two closes are
// joined so callers see both failures, if any.
func (p Pair) Close() error {
	return errors.Join(p.Miso.Close(), p.Mosi.Close())
}

// MisoPath returns the filesystem path of a pair's master→client FIFO.
func MisoPath(name string) string { return name + "_miso" }

// MosiPath returns the filesystem path of a pair's client→master FIFO.
func MosiPath(name string) string { return name + "_mosi" }

// SlotName returns the channel-pair name for the per-client slot at the
// given index within session. Rendezvous uses session itself.
func SlotName(session string, index int) string {
	return fmt.Sprintf("%s_%d", session, index)
}

// Create makes (idempotently) and opens both FIFOs of a named pair for
// the master side: read/write on both ends, so a write never raises
// SIGPIPE or blocks forever waiting for a reader that never shows up.
//
// nonblocking marks the underlying file descriptors O_NONBLOCK at the
// kernel level, matching the channel's documented non-blocking contract
// for per-client pairs. It does not change observed Go-level semantics —
// os.File read/write already park the calling goroutine on the runtime
// poller rather than spinning on EAGAIN — but the flag still reflects the
// wire contract and keeps strace-level behavior honest. Application-level
// backpressure (drop a write rather than block on a stuck client) is
// implemented one layer up, in the master's fan-out, which writes through
// the raw fd and drops the batch on EAGAIN.
func Create(name string, nonblocking bool) (Pair, error) {
	misoPath := MisoPath(name)
	mosiPath := MosiPath(name)

	if err := ensureFifo(misoPath); err != nil {
		return Pair{}, err
	}
	if err := ensureFifo(mosiPath); err != nil {
		return Pair{}, err
	}

	miso, err := openReadWrite(misoPath, nonblocking)
	if err != nil {
		return Pair{}, err
	}
	mosi, err := openReadWrite(mosiPath, nonblocking)
	if err != nil {
		miso.Close()
		return Pair{}, err
	}

	return Pair{Miso: miso, Mosi: mosi}, nil
}

// Connect opens an existing named pair for the client side: miso
// read-only, mosi write-only, both blocking. The FIFOs must already
// exist (created by a master's Create); Connect does not create them.
func Connect(name string) (Pair, error) {
	miso, err := os.OpenFile(MisoPath(name), os.O_RDONLY, 0)
	if err != nil {
		return Pair{}, fmt.Errorf("channel: open %s: %w", MisoPath(name), err)
	}
	mosi, err := os.OpenFile(MosiPath(name), os.O_WRONLY, 0)
	if err != nil {
		miso.Close()
		return Pair{}, fmt.Errorf("channel: open %s: %w", MosiPath(name), err)
	}
	return Pair{Miso: miso, Mosi: mosi}, nil
}

// Unlink removes both FIFOs of a named pair. A missing file is not an
// error: teardown paths call Unlink unconditionally, including for slots
// that were never created.
func Unlink(name string) error {
	err1 := removeIgnoreNotExist(MisoPath(name))
	err2 := removeIgnoreNotExist(MosiPath(name))
	return errors.Join(err1, err2)
}

// Exists reports whether a pair's miso file is present and readable,
// the test the attacher uses to decide whether a session is live before
// attempting to connect.
func Exists(name string) bool {
	return unix.Access(MisoPath(name), unix.R_OK) == nil
}

func ensureFifo(path string) error {
	err := unix.Mkfifo(path, fifoMode)
	if err != nil && !errors.Is(err, unix.EEXIST) {
		return fmt.Errorf("channel: mkfifo %s: %w", path, err)
	}
	return nil
}

func openReadWrite(path string, nonblocking bool) (*os.File, error) {
	flags := os.O_RDWR
	file, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("channel: open %s: %w", path, err)
	}
	if nonblocking {
		if err := unix.SetNonblock(int(file.Fd()), true); err != nil {
			file.Close()
			return nil, fmt.Errorf("channel: set nonblocking %s: %w", path, err)
		}
	}
	return file, nil
}

func removeIgnoreNotExist(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("channel: remove %s: %w", path, err)
	}
	return nil
}
