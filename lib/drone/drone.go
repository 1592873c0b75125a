// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package drone defines the drone data model shared by the hangar
// client and the reconciliation layer: the authoritative Record as
// reported by the registry, its lifecycle Phase, and the immutable
// Snapshot the registry poller delivers.
package drone

import (
	"regexp"
	"slices"
)

// Phase is the lifecycle state of a drone as reported by the hangar
// registry. Values are self-describing strings that serialize directly
// to the wire.
type Phase string

const (
	// PhaseStarting means the drone's sandbox is being provisioned
	// and nothing inside it is running yet.
	PhaseStarting Phase = "starting"

	// PhaseSeeding means the sandbox is up and the agent is ingesting
	// its startup context (repository checkout, initial prompt).
	PhaseSeeding Phase = "seeding"

	// PhaseReady means the drone is up and can accept prompts.
	PhaseReady Phase = "ready"

	// PhaseError means provisioning or the agent itself failed. The
	// drone stays in the registry until deleted.
	PhaseError Phase = "error"
)

// IsKnown reports whether p is one of the defined Phase values. The
// registry may report phases this build does not know about; callers
// treat those as settled, prompt-capable states (see CanAcceptPrompts).
func (p Phase) IsKnown() bool {
	switch p {
	case PhaseStarting, PhaseSeeding, PhaseReady, PhaseError:
		return true
	}
	return false
}

// Provisioning reports whether the drone is still being brought up.
// Only starting and seeding count; unknown phases do not.
func (p Phase) Provisioning() bool {
	return p == PhaseStarting || p == PhaseSeeding
}

// CanAcceptPrompts reports whether a drone in this phase can receive
// prompts: it is neither provisioning nor errored. Unknown phases
// report true. The registry is authoritative, and a phase introduced
// after this build defaults to "the drone can hear us."
func (p Phase) CanAcceptPrompts() bool {
	return !p.Provisioning() && p != PhaseError
}

// maxNameLength bounds drone display names. Long enough for
// descriptive names, short enough to render in one roster cell.
const maxNameLength = 64

// namePattern matches valid drone display names: a letter or digit
// followed by letters, digits, dots, underscores, or hyphens. Anchored
// to the full string.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidName reports whether name is acceptable as a drone display
// name. The hangar applies the same rule server-side; checking here
// lets the deck reject bad names before issuing a command.
func ValidName(name string) bool {
	return len(name) <= maxNameLength && namePattern.MatchString(name)
}

// Record is the authoritative description of one drone as reported by
// the hangar registry. The reconciliation layer never mutates a
// Record; it only reads successive snapshots.
type Record struct {
	// ID is the stable identifier assigned by the hangar at creation.
	ID string `cbor:"id"`

	// Name is the operator-visible display name. Renames are
	// asynchronous: the record reflects whatever the registry last
	// observed, which may lag an accepted rename command.
	Name string `cbor:"name"`

	// Phase is the drone's lifecycle state.
	Phase Phase `cbor:"phase"`

	// Busy reports whether the drone's agent is mid-task. A busy
	// drone is settled (not provisioning) but should keep its
	// optimistic scaffolding until it goes idle.
	Busy bool `cbor:"busy"`

	// Chats lists the names of the drone's existing chats.
	Chats []string `cbor:"chats,omitempty"`
}

// HasChat reports whether the record lists a chat with the given name.
func (r Record) HasChat(name string) bool {
	return slices.Contains(r.Chats, name)
}

// Snapshot is a point-in-time view of the hangar registry: the full
// drone list in registry order plus a by-ID index. Snapshots are
// immutable once built and are consumed strictly in arrival order.
type Snapshot struct {
	records []Record
	byID    map[string]Record
}

// NewSnapshot builds a Snapshot from registry records. Registry order
// is preserved for display. If the registry ever reports the same ID
// twice, the later record wins in the index.
func NewSnapshot(records []Record) *Snapshot {
	byID := make(map[string]Record, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	return &Snapshot{records: records, byID: byID}
}

// Records returns the drone records in registry order. Callers must
// not mutate the returned slice.
func (s *Snapshot) Records() []Record {
	return s.records
}

// Lookup returns the record for id and whether the snapshot contains it.
func (s *Snapshot) Lookup(id string) (Record, bool) {
	record, ok := s.byID[id]
	return record, ok
}

// Contains reports whether the snapshot has a record for id.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of drones in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.records)
}
