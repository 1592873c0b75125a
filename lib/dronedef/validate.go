// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package dronedef

import (
	"fmt"

	"github.com/nerfZael/drone-sub001/lib/drone"
)

// Validate checks a Fleet for structural issues. Returns a list of
// human-readable issue descriptions; an empty list means the fleet is
// valid.
//
// Structural checks:
//   - At least one drone entry is required
//   - Each entry must have a valid name (drone.ValidName)
//   - Names must be unique within the fleet
//
// Validation is client-side convenience only. The hangar re-checks
// names on create-fleet and reports per-spec rejections; a fleet that
// passes Validate can still lose entries to drones that already exist.
func Validate(fleet *Fleet) []string {
	var issues []string

	if len(fleet.Drones) == 0 {
		issues = append(issues, "fleet has no drones (at least one entry is required)")
	}

	// Duplicate names inside one fleet would race each other at the
	// hangar; whichever spec lands first wins and the rest bounce
	// with duplicate-name. Catch it before submitting.
	names := make(map[string]int, len(fleet.Drones))
	for index, entry := range fleet.Drones {
		prefix := fmt.Sprintf("drones[%d]", index)

		if entry.Name == "" {
			issues = append(issues, fmt.Sprintf("%s: name is required", prefix))
			continue
		}
		prefix = fmt.Sprintf("%s %q", prefix, entry.Name)

		if !drone.ValidName(entry.Name) {
			issues = append(issues, fmt.Sprintf("%s: invalid name (want letters, digits, dots, underscores, hyphens; 64 chars max)", prefix))
		}
		if firstIndex, exists := names[entry.Name]; exists {
			issues = append(issues, fmt.Sprintf("%s: duplicate name (first used at drones[%d])", prefix, firstIndex))
		} else {
			names[entry.Name] = index
		}
	}

	return issues
}
