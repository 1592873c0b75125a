// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// envVar names the environment variable holding the config file path.
const envVar = "DRONE_DECK_CONFIG"

// Duration is a time.Duration that unmarshals from a Go duration
// string ("2s", "1m30s") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the deck configuration.
type Config struct {
	// Hangar configures the connection to the hangar service.
	Hangar HangarConfig `yaml:"hangar"`

	// Engine configures the reconciliation windows.
	Engine EngineConfig `yaml:"engine"`

	// Log configures background log capture.
	Log LogConfig `yaml:"log"`
}

// HangarConfig configures the hangar connection and polling.
type HangarConfig struct {
	// SocketPath is the unix socket the hangar serves on.
	SocketPath string `yaml:"socket_path"`

	// PollInterval is the registry snapshot poll period.
	PollInterval Duration `yaml:"poll_interval"`
}

// EngineConfig configures the reconciliation engine's two windows.
type EngineConfig struct {
	// SeedFreshness bounds how long an optimistic creation placeholder
	// survives without the registry confirming the drone exists.
	SeedFreshness Duration `yaml:"seed_freshness"`

	// SelectionHold bounds how long a just-created drone is remembered
	// as the selection target while waiting for it to become visible.
	SelectionHold Duration `yaml:"selection_hold"`
}

// LogConfig configures background log capture.
type LogConfig struct {
	// Output is a file path that receives all log records as JSONL, in
	// addition to the warnings shown in the deck footer. Empty disables
	// file capture.
	Output string `yaml:"output"`
}

// Default returns the configuration the deck runs with when no config
// file is given. Every field carries a usable value; a config file
// overrides only what it names.
func Default() *Config {
	return &Config{
		Hangar: HangarConfig{
			SocketPath:   "/tmp/drone-hangar.sock",
			PollInterval: Duration(2 * time.Second),
		},
		Engine: EngineConfig{
			SeedFreshness: Duration(45 * time.Second),
			SelectionHold: Duration(30 * time.Second),
		},
	}
}

// Load loads the configuration from the file named by the
// DRONE_DECK_CONFIG environment variable, or returns defaults when the
// variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(envVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from a specific file path, merged
// over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Hangar.SocketPath == "" {
		errs = append(errs, fmt.Errorf("hangar.socket_path is required"))
	}
	if c.Hangar.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("hangar.poll_interval must be positive"))
	}
	if c.Engine.SeedFreshness <= 0 {
		errs = append(errs, fmt.Errorf("engine.seed_freshness must be positive"))
	}
	if c.Engine.SelectionHold <= 0 {
		errs = append(errs, fmt.Errorf("engine.selection_hold must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
