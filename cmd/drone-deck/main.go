// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Drone-deck is the terminal dashboard for a hangar of drones:
// ephemeral agent sandboxes that accept prompts and report lifecycle
// phase through a poll-only registry. The deck renders the fleet
// roster, queues prompts per drone chat so typing never waits on the
// socket, and reconciles its optimistic view against each registry
// snapshot.
//
// Configuration comes from a YAML file named by DRONE_DECK_CONFIG or
// --config; the deck runs on built-in defaults when neither is set.
// Flags override the file for the fields they cover.
//
// With --fleet, the named fleet definition (.jsonc) is submitted to
// the hangar before the dashboard opens. Accepted drones appear as
// provisioning placeholders immediately; rejected names land in the
// deck's retry state.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/nerfZael/drone-sub001/lib/clock"
	"github.com/nerfZael/drone-sub001/lib/config"
	"github.com/nerfZael/drone-sub001/lib/deckui"
	"github.com/nerfZael/drone-sub001/lib/dronedef"
	"github.com/nerfZael/drone-sub001/lib/hangar"
	"github.com/nerfZael/drone-sub001/lib/process"
	"github.com/nerfZael/drone-sub001/lib/reconcile"
	"github.com/nerfZael/drone-sub001/lib/version"
)

// fleetSubmitTimeout bounds the startup create-fleet call. Generous:
// the hangar validates names synchronously but does not provision
// synchronously, so the call should return quickly even for large
// fleets.
const fleetSubmitTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("drone-deck", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to deck config YAML (default: $DRONE_DECK_CONFIG, else built-in defaults)")
	hangarSocket := flagSet.String("hangar-socket", "", "hangar unix socket path (overrides config)")
	fleetPath := flagSet.String("fleet", "", "fleet definition file (.jsonc) to submit on startup")
	logOutput := flagSet.String("log-output", "", "write JSON log records to this file in addition to the footer notices (overrides config)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the other deck
	// binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("drone-deck")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *hangarSocket != "" {
		cfg.Hangar.SocketPath = *hangarSocket
	}
	if *logOutput != "" {
		cfg.Log.Output = *logOutput
	}

	// Fleet definition problems surface on stderr before the terminal
	// switches to the alternate screen.
	var fleet *dronedef.Fleet
	if *fleetPath != "" {
		fleet, err = dronedef.ReadFile(*fleetPath)
		if err != nil {
			return err
		}
		if issues := dronedef.Validate(fleet); len(issues) > 0 {
			return fmt.Errorf("fleet %s:\n  %s", fleet.Name, strings.Join(issues, "\n  "))
		}
	}

	// Background log records (failed polls, delivery failures) route
	// into the footer notice line; writing to stderr would corrupt the
	// alternate screen. An optional JSONL file captures every record
	// for post-mortem reading.
	tuiHandler := deckui.NewTUILogHandler(slog.LevelWarn)
	var logger *slog.Logger
	if cfg.Log.Output != "" {
		fileHandler, closeFile, fileErr := openFileLogHandler(cfg.Log.Output)
		if fileErr != nil {
			return fmt.Errorf("cannot open log file %s: %w", cfg.Log.Output, fileErr)
		}
		defer closeFile()
		logger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		logger = slog.New(tuiHandler)
	}

	client := hangar.NewClient(cfg.Hangar.SocketPath)
	engine := reconcile.New(client, clock.Real(), logger, reconcile.Config{
		SeedFreshness: cfg.Engine.SeedFreshness.Std(),
		SelectionHold: cfg.Engine.SelectionHold.Std(),
	})
	defer engine.Close()

	// Submit the fleet before the first frame so accepted drones are
	// already placeholders and rejected names are already in the retry
	// state when the roster first renders.
	if fleet != nil {
		if err := submitFleet(engine, fleet); err != nil {
			return err
		}
	}

	pollContext, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()
	poller := &hangar.Poller{
		Source:   client,
		Interval: cfg.Hangar.PollInterval.Std(),
		Clock:    clock.Real(),
		Logger:   logger,
		Handle:   engine.HandleSnapshot,
	}
	go poller.Run(pollContext)

	// The theme is authored against the xterm-256 palette; pin the
	// profile so roster colors do not vary with per-terminal detection.
	lipgloss.SetColorProfile(termenv.ANSI256)

	model := deckui.NewModel(engine)
	program := tea.NewProgram(model, tea.WithAltScreen())

	tuiHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

// loadConfig resolves the configuration: an explicit --config path
// wins, otherwise DRONE_DECK_CONFIG, otherwise built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// submitFleet sends a validated fleet to the hangar. Per-spec
// rejections are not an error: the engine tracks them as pending
// names and the deck offers retry. Only transport-level failure
// aborts startup.
func submitFleet(engine *reconcile.Reconciler, fleet *dronedef.Fleet) error {
	ctx, cancel := context.WithTimeout(context.Background(), fleetSubmitTimeout)
	defer cancel()

	if _, err := engine.CreateFleet(ctx, fleet.Specs()); err != nil {
		return fmt.Errorf("creating fleet %s: %w", fleet.Name, err)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Drone Deck — terminal dashboard for a hangar of drones.

The deck shows every drone the hangar knows about with its lifecycle
phase, busy marker, and prompt queue depth. Prompts are queued per
drone chat and delivered in order; a failed delivery halts that queue
until you retry or discard the failed prompt.

Keys: j/k move, Tab next chat, Enter compose, c create, r rename,
D delete, R retry failed, x discard failed, / filter, q quit.

Usage:
  drone-deck [flags]

Examples:
  # Open the deck against the default hangar socket
  drone-deck

  # Develop against the mock hangar
  drone-hangar-mock &
  drone-deck

  # Provision a fleet on startup
  drone-deck --fleet fleets/review-squad.jsonc

  # Non-default socket, with log capture for post-mortem reading
  drone-deck --hangar-socket /tmp/dev-hangar.sock --log-output /tmp/deck-log.jsonl

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// openFileLogHandler creates a slog.JSONHandler that writes to the
// given file path. Returns the handler, a cleanup function to close
// the file, and any error. The file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
