// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/attachd/attachd/internal/wire"
)

// RunPush is the degenerate non-interactive attacher: it copies in to
// the slot as PUSH packets until EOF, without ever sending ATTACH or
// touching terminal modes. It is the primitive behind a "pipe a command
// into a running session" invocation.
func (c *Client) RunPush(in *os.File) (int, error) {
	buf := make([]byte, wire.PayloadLength)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			push := wire.Encode(wire.NewPush(buf[:n]))
			if _, werr := c.slot.Mosi.Write(push[:]); werr != nil {
				return 1, fmt.Errorf("attach: push write: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, nil
			}
			return 1, fmt.Errorf("attach: push read: %w", err)
		}
	}
}
