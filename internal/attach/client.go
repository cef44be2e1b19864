// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/attachd/attachd/internal/channel"
	"github.com/attachd/attachd/internal/wire"
)

// ErrServerFull is returned by Connect when the master reports every
// slot is taken. Callers map it to exit code 2.
var ErrServerFull = errors.New("attach: server is full")

// ErrNoSession is returned by Connect when the session's rendezvous
// channel is not present.
var ErrNoSession = errors.New("attach: no such session")

// Config configures one attach.
type Config struct {
	Session      string
	DetachChar   byte
	RedrawMethod byte
	NoSuspend    bool
	Logger       *slog.Logger
}

// Client is a connected attacher: it holds its rendezvous connection
// open for the eventual release request and its per-slot pair for I/O.
type Client struct {
	cfg        Config
	rendezvous channel.Pair
	slot       channel.Pair
	index      int
	log        *slog.Logger
}

// Connect verifies the session is live, performs the rendezvous
// handshake to claim a slot, and connects to that slot's channel pair.
// The rendezvous connection is kept open on the returned Client so a
// later Release does not need to reconnect.
func Connect(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !channel.Exists(cfg.Session) {
		return nil, ErrNoSession
	}

	rendezvous, err := channel.Connect(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("attach: connect rendezvous: %w", err)
	}

	if _, err := rendezvous.Mosi.Write([]byte{wire.EncodeCreateRequest()}); err != nil {
		rendezvous.Close()
		return nil, fmt.Errorf("attach: send create request: %w", err)
	}
	reply := make([]byte, 1)
	if _, err := io.ReadFull(rendezvous.Miso, reply); err != nil {
		rendezvous.Close()
		return nil, fmt.Errorf("attach: read admission reply: %w", err)
	}
	index := int(reply[0])
	if wire.IsFull(index) {
		rendezvous.Close()
		return nil, ErrServerFull
	}

	slot, err := channel.Connect(channel.SlotName(cfg.Session, index))
	if err != nil {
		rendezvous.Close()
		return nil, fmt.Errorf("attach: connect slot %d: %w", index, err)
	}

	return &Client{cfg: cfg, rendezvous: rendezvous, slot: slot, index: index, log: cfg.Logger}, nil
}

// Release sends a release request for this client's slot on the
// rendezvous channel. The master silently ignores a release for a slot
// that is already free. It does not check which client holds the slot,
// so a release sent after the index was handed to another client frees
// that client's slot.
func (c *Client) Release() error {
	_, err := c.rendezvous.Mosi.Write([]byte{wire.EncodeReleaseRequest(c.index)})
	if err != nil {
		return fmt.Errorf("attach: send release: %w", err)
	}
	return nil
}

// Close closes this client's local file descriptors. It does not
// unlink anything; the master owns and unlinks the channel files.
func (c *Client) Close() error {
	return errors.Join(c.slot.Close(), c.rendezvous.Close())
}
