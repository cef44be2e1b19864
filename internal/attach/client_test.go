// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/attachd/attachd/internal/channel"
	"github.com/attachd/attachd/internal/wire"
)

func TestConnectNoSession(t *testing.T) {
	t.Parallel()
	session := filepath.Join(t.TempDir(), "never-created")
	_, err := Connect(Config{Session: session})
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("Connect = %v, want ErrNoSession", err)
	}
}

func TestConnectHappyPath(t *testing.T) {
	t.Parallel()
	session := filepath.Join(t.TempDir(), "sess")

	master, err := channel.Create(session, false)
	if err != nil {
		t.Fatalf("channel.Create rendezvous: %v", err)
	}
	defer master.Close()

	slotName := channel.SlotName(session, 0)
	slot, err := channel.Create(slotName, true)
	if err != nil {
		t.Fatalf("channel.Create slot: %v", err)
	}
	defer slot.Close()

	go func() {
		buf := make([]byte, 1)
		master.Mosi.Read(buf)
		master.Miso.Write([]byte{0})
	}()

	client, err := Connect(Config{Session: session})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	if client.index != 0 {
		t.Errorf("index = %d, want 0", client.index)
	}
}

func TestConnectServerFull(t *testing.T) {
	t.Parallel()
	session := filepath.Join(t.TempDir(), "sess")

	master, err := channel.Create(session, false)
	if err != nil {
		t.Fatalf("channel.Create rendezvous: %v", err)
	}
	defer master.Close()

	go func() {
		buf := make([]byte, 1)
		master.Mosi.Read(buf)
		master.Miso.Write([]byte{byte(wire.MaxSlots)})
	}()

	_, err = Connect(Config{Session: session})
	if !errors.Is(err, ErrServerFull) {
		t.Fatalf("Connect = %v, want ErrServerFull", err)
	}
}

func TestReleaseSendsCorrectByte(t *testing.T) {
	t.Parallel()
	session := filepath.Join(t.TempDir(), "sess")

	master, err := channel.Create(session, false)
	if err != nil {
		t.Fatalf("channel.Create rendezvous: %v", err)
	}
	defer master.Close()

	slotName := channel.SlotName(session, 5)
	slot, err := channel.Create(slotName, true)
	if err != nil {
		t.Fatalf("channel.Create slot: %v", err)
	}
	defer slot.Close()

	done := make(chan byte, 1)
	go func() {
		buf := make([]byte, 1)
		master.Mosi.Read(buf)
		master.Miso.Write([]byte{5})
		master.Mosi.Read(buf)
		done <- buf[0]
	}()

	client, err := Connect(Config{Session: session})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	if err := client.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	got := <-done
	if wire.IsCreateRequest(got) {
		t.Fatal("release byte has create bit set")
	}
	if wire.ReleaseIndex(got) != 5 {
		t.Fatalf("ReleaseIndex(got) = %d, want 5", wire.ReleaseIndex(got))
	}
}
