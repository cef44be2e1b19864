// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestCreateIsIdempotent(t *testing.T) {
	t.Parallel()
	name := filepath.Join(t.TempDir(), "sess")

	first, err := Create(name, false)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	defer first.Close()

	second, err := Create(name, false)
	if err != nil {
		t.Fatalf("second Create on existing FIFOs: %v", err)
	}
	defer second.Close()
}

func TestExists(t *testing.T) {
	t.Parallel()
	name := filepath.Join(t.TempDir(), "sess")

	if Exists(name) {
		t.Fatal("Exists true before Create")
	}

	pair, err := Create(name, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer pair.Close()

	if !Exists(name) {
		t.Fatal("Exists false after Create")
	}
}

func TestCreateConnectRoundTrip(t *testing.T) {
	t.Parallel()
	name := filepath.Join(t.TempDir(), "sess")

	master, err := Create(name, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer master.Close()

	var client Pair
	connected := make(chan struct{})
	var connectErr error
	go func() {
		client, connectErr = Connect(name)
		close(connected)
	}()

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("Connect did not return in time")
	}
	if connectErr != nil {
		t.Fatalf("Connect: %v", connectErr)
	}
	defer client.Close()

	const message = "hello from master"
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := master.Miso.Write([]byte(message)); err != nil {
			t.Errorf("master write: %v", err)
		}
	}()

	buf := make([]byte, len(message))
	if _, err := client.Miso.Read(buf); err != nil {
		t.Fatalf("client read: %v", err)
	}
	wg.Wait()
	if string(buf) != message {
		t.Errorf("got %q, want %q", buf, message)
	}

	const reply = "hello from client"
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := client.Mosi.Write([]byte(reply)); err != nil {
			t.Errorf("client write: %v", err)
		}
	}()
	buf2 := make([]byte, len(reply))
	if _, err := master.Mosi.Read(buf2); err != nil {
		t.Fatalf("master read: %v", err)
	}
	wg.Wait()
	if string(buf2) != reply {
		t.Errorf("got %q, want %q", buf2, reply)
	}
}

func TestUnlinkRemovesBothFiles(t *testing.T) {
	t.Parallel()
	name := filepath.Join(t.TempDir(), "sess")

	pair, err := Create(name, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pair.Close()

	if err := Unlink(name); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if _, err := os.Stat(MisoPath(name)); !os.IsNotExist(err) {
		t.Errorf("miso still present after Unlink: %v", err)
	}
	if _, err := os.Stat(MosiPath(name)); !os.IsNotExist(err) {
		t.Errorf("mosi still present after Unlink: %v", err)
	}
}

func TestUnlinkOnMissingPairIsNotAnError(t *testing.T) {
	t.Parallel()
	name := filepath.Join(t.TempDir(), "never-created")
	if err := Unlink(name); err != nil {
		t.Fatalf("Unlink on missing pair: %v", err)
	}
}

func TestSlotNameIsDeterministic(t *testing.T) {
	t.Parallel()
	if got, want := SlotName("sess", 3), "sess_3"; got != want {
		t.Errorf("SlotName = %q, want %q", got, want)
	}
}
