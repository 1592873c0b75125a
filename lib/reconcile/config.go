// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import "time"

// Config carries the engine's two timeouts. Zero-valued fields are
// replaced with defaults by applyDefaults().
type Config struct {
	// SeedFreshness bounds how long a creation seed survives without
	// the registry ever confirming the drone exists. While fresh, the
	// seed backs a placeholder roster entry; past the window it is
	// garbage collected and the placeholder disappears.
	SeedFreshness time.Duration

	// SelectionHold bounds how long a selection preference waits for
	// its drone to become visible before giving up. The preference
	// also survives past this window while its backing seed is still
	// fresh.
	SelectionHold time.Duration
}

// DefaultConfig returns the default engine timeouts. The freshness
// window comfortably exceeds typical provision-to-first-snapshot
// latency; the hold window covers a few poll intervals.
func DefaultConfig() Config {
	return Config{
		SeedFreshness: 45 * time.Second,
		SelectionHold: 30 * time.Second,
	}
}

// applyDefaults fills zero-valued fields with defaults.
func (config Config) applyDefaults() Config {
	defaults := DefaultConfig()
	if config.SeedFreshness <= 0 {
		config.SeedFreshness = defaults.SeedFreshness
	}
	if config.SelectionHold <= 0 {
		config.SelectionHold = defaults.SelectionHold
	}
	return config
}
