// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"context"
	"os"
)

const bufSize = 4096

// readLoop reads up to size bytes at a time from file, delivering each
// non-empty read to dataCh and terminating on the first error
// (including io.EOF) by sending it to errCh. It mirrors the master
// package's reader goroutine shape: one goroutine per fd feeding a
// single loop that owns all mutable state.
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
