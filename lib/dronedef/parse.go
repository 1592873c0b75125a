// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package dronedef provides parsing and validation for fleet
// definition files: batches of drones to create in one shot.
//
// Fleet definitions are authored on disk as JSONC files (JSON extended
// with comments and trailing commas), the format the deck's --fleet
// flag consumes. The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Fleet
//  2. Validate: structural checks (non-empty unique valid names)
//  3. Fleet.Specs: expand defaults into hangar.CreateSpec values for
//     a create-fleet call
package dronedef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/nerfZael/drone-sub001/lib/hangar"
)

// Fleet is a parsed fleet definition.
type Fleet struct {
	// Name labels the fleet in logs. Defaults to the file name when
	// loaded via ReadFile.
	Name string `json:"name,omitempty"`

	// Defaults fill empty fields on every drone entry.
	Defaults Defaults `json:"defaults,omitempty"`

	// Drones lists the drones to create.
	Drones []Drone `json:"drones"`
}

// Defaults are fleet-wide fallbacks for per-drone fields.
type Defaults struct {
	// Agent selects the agent/model for drones that do not choose
	// their own. Empty defers to the hangar default.
	Agent string `json:"agent,omitempty"`

	// Chat names the first chat for drones that do not choose their
	// own. Empty defers to the hangar default.
	Chat string `json:"chat,omitempty"`
}

// Drone is one drone entry in a fleet definition.
type Drone struct {
	// Name is the display name. Required, unique within the fleet.
	Name string `json:"name"`

	// Agent overrides Defaults.Agent for this drone.
	Agent string `json:"agent,omitempty"`

	// Chat overrides Defaults.Chat for this drone.
	Chat string `json:"chat,omitempty"`

	// InitialPrompt is seeded into the drone's first chat once it is
	// up.
	InitialPrompt string `json:"initial_prompt,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Fleet. The input format is plain JSON
// extended with // line comments, /* block comments */, and trailing
// commas.
func Parse(data []byte) (*Fleet, error) {
	stripped := jsonc.ToJSON(data)

	var fleet Fleet
	if err := json.Unmarshal(stripped, &fleet); err != nil {
		return nil, fmt.Errorf("parsing fleet definition: %w", err)
	}

	return &fleet, nil
}

// ReadFile reads a JSONC fleet definition from disk and parses it.
// A fleet without an explicit name takes its name from the file path.
func ReadFile(path string) (*Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	fleet, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if fleet.Name == "" {
		fleet.Name = NameFromPath(path)
	}
	return fleet, nil
}

// NameFromPath extracts a fleet name from a file path by stripping the
// directory prefix and the file extension. For example,
// "fleets/review-squad.jsonc" returns "review-squad".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}

// Specs expands the fleet into create specs for a create-fleet call,
// applying fleet defaults to entries that leave agent or chat empty.
func (f *Fleet) Specs() []hangar.CreateSpec {
	specs := make([]hangar.CreateSpec, 0, len(f.Drones))
	for _, entry := range f.Drones {
		spec := hangar.CreateSpec{
			Name:          entry.Name,
			Agent:         entry.Agent,
			Chat:          entry.Chat,
			InitialPrompt: entry.InitialPrompt,
		}
		if spec.Agent == "" {
			spec.Agent = f.Defaults.Agent
		}
		if spec.Chat == "" {
			spec.Chat = f.Defaults.Chat
		}
		specs = append(specs, spec)
	}
	return specs
}
