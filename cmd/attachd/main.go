// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

// Command attachd is the session master: it owns one pseudo-terminal
// and a child program running under it, and lets zero or more attach
// clients connect and disconnect from that PTY over a named local
// channel.
//
// Usage:
//
//	attachd [flags] <session-path> <command> [args...]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/attachd/attachd/internal/master"
	"github.com/attachd/attachd/internal/wire"
)

const internalDaemonChildFlag = "--internal-daemon-child"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("attachd", pflag.ContinueOnError)
	waitAttach := flags.BoolP("wait-attach", "w", false, "hold PTY output until the first client attaches")
	foreground := flags.BoolP("foreground", "f", false, "do not daemonize; run the master in this process")
	redraw := flags.StringP("redraw", "r", "none", "default redraw method substituted for a client's REDRAW_UNSPEC")
	internalChild := flags.Bool("internal-daemon-child", false, "internal: this process is the re-exec'd daemon child")
	flags.MarkHidden("internal-daemon-child")

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "attachd: %v\n", err)
		return 1
	}

	positional := flags.Args()
	if len(positional) < 2 {
		fmt.Fprintln(os.Stderr, "usage: attachd [flags] <session-path> <command> [args...]")
		return 1
	}
	session := positional[0]
	argv := positional[1:]

	redrawMethod, err := parseRedraw(*redraw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "attachd: %v\n", err)
		return 1
	}

	cfg := master.Config{
		Session:       session,
		Argv:          argv,
		WaitAttach:    *waitAttach,
		RedrawDefault: redrawMethod,
		InitialSize:   wire.Winsize{Rows: 24, Cols: 80},
		Logger:        logger,
	}

	if *foreground {
		return runMaster(cfg)
	}
	if *internalChild {
		return runDaemonChild(cfg)
	}
	return daemonize(args)
}

// runDaemonChild runs the master in a re-exec'd, already-detached
// process, reporting a non-zero exit code back to the original
// invocation through the inherited status pipe on fd 3.
func runDaemonChild(cfg master.Config) int {
	status := os.NewFile(3, "status")
	code := runMaster(cfg)
	if status != nil {
		if code != 0 {
			status.Write([]byte{byte(code)})
		}
		status.Close()
	}
	return code
}

func runMaster(cfg master.Config) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sig
		cancel()
	}()

	m := master.New(cfg)
	if err := m.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "attachd: %v\n", err)
		if errors.Is(err, master.ErrExecFailed) {
			return 127
		}
		return 1
	}
	return 0
}

// daemonize re-execs the current binary with --internal-daemon-child,
// detached into its own session, and waits on a status pipe the child
// writes to only if master.Run fails before or during startup. Go
// programs cannot safely fork() mid-execution the way the original
// dtachez's master does, so a fresh exec of the same binary under
// Setsid stands in for "fork, setsid, and become the master" — the
// child still reports failures back to this process exactly the way
// the original's close-on-exec status pipe reports a failed execvp to
// its parent.
func daemonize(args []string) int {
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "attachd: %v\n", err)
		return 1
	}

	statusR, statusW, err := os.Pipe()
	if err != nil {
		fmt.Fprintf(os.Stderr, "attachd: %v\n", err)
		return 1
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "attachd: %v\n", err)
		return 1
	}
	defer devNull.Close()

	child := exec.Command(exe, append(append([]string{}, args...), internalDaemonChildFlag)...)
	child.Stdin, child.Stdout, child.Stderr = devNull, devNull, devNull
	child.ExtraFiles = []*os.File{statusW}
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "attachd: %v\n", err)
		return 1
	}
	statusW.Close()

	buf := make([]byte, 1)
	n, _ := statusR.Read(buf)
	if n == 1 {
		return int(buf[0])
	}
	return 0
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
