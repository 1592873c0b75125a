// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package hangar

import (
	"github.com/nerfZael/drone-sub001/lib/drone"
)

// Action names of the hangar socket protocol.
const (
	ActionCreateDrone = "create-drone"
	ActionCreateFleet = "create-fleet"
	ActionSendPrompt  = "send-prompt"
	ActionRenameDrone = "rename-drone"
	ActionDeleteDrone = "delete-drone"
	ActionSnapshot    = "snapshot"
)

// DefaultChat is the chat name the hangar gives a drone's first chat
// when the create spec does not choose one.
const DefaultChat = "default"

// CreateSpec describes one drone to provision. Name is required; the
// hangar fills defaults for everything else.
type CreateSpec struct {
	// Name is the display name. Must be unique across the hangar.
	Name string `cbor:"name"`

	// Agent selects the agent/model the drone runs. Empty means the
	// hangar default.
	Agent string `cbor:"agent,omitempty"`

	// Chat names the drone's first chat. Empty means the hangar
	// default ("default").
	Chat string `cbor:"chat,omitempty"`

	// InitialPrompt is seeded into the first chat once the drone is
	// up. Empty means the drone starts idle.
	InitialPrompt string `cbor:"initial_prompt,omitempty"`
}

// CreateResult is the hangar's acknowledgement of an accepted create.
// The drone does not exist in registry snapshots yet; it will appear
// there in phase "starting".
type CreateResult struct {
	ID    string      `cbor:"id"`
	Name  string      `cbor:"name"`
	Phase drone.Phase `cbor:"phase"`
}

// RejectedSpec reports one spec the hangar declined inside a
// create-fleet batch. Error is the "code: message" wire form.
type RejectedSpec struct {
	Name  string `cbor:"name"`
	Error string `cbor:"error"`
}

// FleetResult is the outcome of a create-fleet call. Partial
// acceptance is not a call-level error: the accepted drones are being
// provisioned regardless of how many specs were rejected.
type FleetResult struct {
	Accepted []CreateResult `cbor:"accepted"`
	Rejected []RejectedSpec `cbor:"rejected"`
	Total    int            `cbor:"total"`
}

// PromptReceipt acknowledges an accepted send-prompt. PromptID is the
// hangar-assigned identifier of the delivered prompt.
type PromptReceipt struct {
	PromptID string `cbor:"prompt_id"`
}

// RenameResult acknowledges an accepted rename-drone.
type RenameResult struct {
	ID      string `cbor:"id"`
	OldName string `cbor:"old_name"`
	NewName string `cbor:"new_name"`
}

// SnapshotData is the payload of a snapshot response: the registry's
// full drone list in registry order.
type SnapshotData struct {
	Drones []drone.Record `cbor:"drones"`
}
