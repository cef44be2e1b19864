// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/attachd/attachd/internal/wire"
)

func TestParseRedraw(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{"none", wire.RedrawNone, false},
		{"ctrl_l", wire.RedrawCtrlL, false},
		{"winch", wire.RedrawWinch, false},
		{"bogus", 0, true},
	}
	for _, test := range tests {
		got, err := parseRedraw(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("parseRedraw(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
		}
		if !test.wantErr && got != test.want {
			t.Errorf("parseRedraw(%q) = %d, want %d", test.in, got, test.want)
		}
	}
}

func TestRunRejectsMissingArgs(t *testing.T) {
	t.Parallel()
	if code := run([]string{}); code != 1 {
		t.Errorf("run with no args = %d, want 1", code)
	}
	if code := run([]string{"/tmp/sess-only"}); code != 1 {
		t.Errorf("run with only a session = %d, want 1", code)
	}
}

func TestRunRejectsUnknownRedraw(t *testing.T) {
	t.Parallel()
	code := run([]string{"--redraw=bogus", "/tmp/sess", "/bin/true"})
	if code != 1 {
		t.Errorf("run with unknown redraw = %d, want 1", code)
	}
}
