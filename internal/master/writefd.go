// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package master

import (
	"os"

	"golang.org/x/sys/unix"
)

// writeNonblocking attempts a single non-blocking write of data to
// file, retrying only on EINTR. It never waits for the fd to become
// writable: a write that would block reports aborted=true with however
// much it managed to write before that point, so a slow client drops
// the remainder of its batch instead of stalling every other client's
// delivery, matching the fan-out drop policy in the PTY writer.
//
// This is deliberately not file.Write: the standard os.File would let
// the Go runtime's netpoller park the caller until the fd drains,
// which is exactly the blocking behavior the fan-out must not have.
// Reaching the fd's syscall directly through SyscallConn is what makes
// "one attempt, drop on EAGAIN" observable at the Go level.
func writeNonblocking(file *os.File, data []byte) (n int, aborted bool, err error) {
	raw, connErr := file.SyscallConn()
	if connErr != nil {
		return 0, false, connErr
	}

	ctrlErr := raw.Write(func(fd uintptr) bool {
		for n < len(data) {
			written, werr := unix.Write(int(fd), data[n:])
			switch werr {
			case nil:
				n += written
			case unix.EINTR:
				continue
			case unix.EAGAIN:
				aborted = true
				return true
			default:
				err = werr
				return true
			}
		}
		return true
	})
	if err == nil {
		err = ctrlErr
	}
	return n, aborted, err
}
