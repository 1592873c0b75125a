// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint helpers shared by the deck's
// binaries: fatal error reporting for failures that happen before the
// structured logger exists, and stderr logger construction.
package process

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run().
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// NewLogger creates a structured stderr logger. When stderr is a
// terminal, records use the text handler for human-readable output.
// When stderr is piped or redirected (CI, supervisors, integration
// tests), records use the JSON handler so they stay machine-parseable.
func NewLogger(level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
