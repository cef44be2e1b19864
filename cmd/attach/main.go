// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

// Command attach is the session client: it connects to a running
// attachd session, puts the local terminal in raw mode, and relays
// keyboard input and PTY output until detach, EOF, or a fatal signal.
//
// Usage:
//
//	attach [flags] <session-path>
//	attach push [flags] <session-path>
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/attachd/attachd/internal/attach"
	"github.com/attachd/attachd/internal/wire"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	pushMode := false
	if len(args) > 0 && args[0] == "push" {
		pushMode = true
		args = args[1:]
	}

	flags := pflag.NewFlagSet("attach", pflag.ContinueOnError)
	detachChar := flags.StringP("detach-char", "d", "\x1c", "single byte that detaches this client (default ^\\)")
	redraw := flags.StringP("redraw", "r", "none", "redraw method sent on attach: none|ctrl_l|winch")
	noSuspend := flags.Bool("no-suspend", false, "disable ^Z suspend/resume handling")

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "attach: %v\n", err)
		return 1
	}

	positional := flags.Args()
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "usage: attach [flags] <session-path>")
		return 1
	}
	session := positional[0]

	if len(*detachChar) != 1 {
		fmt.Fprintln(os.Stderr, "attach: --detach-char must be exactly one byte")
		return 1
	}
	redrawMethod, err := parseRedraw(*redraw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "attach: %v\n", err)
		return 1
	}

	cfg := attach.Config{
		Session:      session,
		DetachChar:   (*detachChar)[0],
		RedrawMethod: redrawMethod,
		NoSuspend:    *noSuspend,
		Logger:       logger,
	}

	client, err := attach.Connect(cfg)
	if err != nil {
		return exitCodeFor(err)
	}
	defer client.Close()

	if pushMode {
		code, err := client.RunPush(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "attach: %v\n", err)
		}
		return code
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "attach: stdin is not a terminal; use the push subcommand for pipes")
		return 1
	}

	code, err := client.RunInteractive(context.Background(), os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "attach: %v\n", err)
	}
	return code
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, attach.ErrServerFull), errors.Is(err, attach.ErrNoSession):
		fmt.Fprintf(os.Stderr, "attach: %v\n", err)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "attach: %v\n", err)
		return 1
	}
}

func parseRedraw(s string) (byte, error) {
	switch s {
	case "none":
		return wire.RedrawNone, nil
	case "ctrl_l":
		return wire.RedrawCtrlL, nil
	case "winch":
		return wire.RedrawWinch, nil
	default:
		return 0, fmt.Errorf("unknown redraw method %q", s)
	}
}
