// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package master

import (
	"fmt"
	"os"
)

// execBits is the owner execute bit (S_IXUSR) the marker file toggles to
// advertise "at least one client is attached" to anything polling it
// with stat(2), without those observers needing to speak the protocol.
const execBits = 0o100

// syncMarker chmods the session marker file (the session path itself)
// to add or remove the execute bit, only touching the file when its
// current execute bit differs from attached.
func syncMarker(path string, attached bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("master: stat marker %s: %w", path, err)
	}
	mode := info.Mode().Perm()
	want := mode &^ execBits
	if attached {
		want |= execBits
	}
	if want == mode {
		return nil
	}
	if err := os.Chmod(path, want); err != nil {
		return fmt.Errorf("master: chmod marker %s: %w", path, err)
	}
	return nil
}
