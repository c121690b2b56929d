// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command taskboard manages a task collection from the terminal. See
// "taskboard --help".
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/cmd/taskboard/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that already printed their outcome (a declined
		// prompt) return an ExitError; don't add an "error:" line.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)
	logger := cli.NewCommandLogger(os.Stderr, level)

	root := commands.Root(commands.Options{
		Streams: cli.StandardStreams(),
		Level:   level,
	})
	return root.Execute(ctx, os.Args[1:], logger)
}
