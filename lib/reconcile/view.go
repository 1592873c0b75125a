// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"sort"

	"github.com/nerfZael/drone-sub001/lib/drone"
	"github.com/nerfZael/drone-sub001/lib/hangar"
)

// RosterEntry is one row of the derived visible roster.
type RosterEntry struct {
	ID    string
	Name  string
	Phase drone.Phase
	Busy  bool
	Chats []string

	// Placeholder marks an entry synthesized from a startup seed for a
	// drone the registry has not confirmed yet.
	Placeholder bool

	// QueueDepth counts prompts waiting across all of the drone's
	// queues.
	QueueDepth int

	// FailedDelivery reports whether any of the drone's queues is
	// halted on a failed prompt.
	FailedDelivery bool
}

// Roster derives the visible drone list: authoritative records minus
// overlay-hidden IDs, plus placeholder entries for seeds the registry
// has not confirmed yet, narrowed by the roster filter. Records keep
// registry order; placeholders follow in creation order.
func (r *Reconciler) Roster() []RosterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// rosterLocked builds the visible roster. Must be called with mu held.
func (r *Reconciler) rosterLocked() []RosterEntry {
	var entries []RosterEntry
	if r.snapshot != nil {
		for _, record := range r.snapshot.Records() {
			if r.overlay.Hidden(record.ID) {
				continue
			}
			entries = append(entries, r.entryLocked(RosterEntry{
				ID:    record.ID,
				Name:  record.Name,
				Phase: record.Phase,
				Busy:  record.Busy,
				Chats: record.Chats,
			}))
		}
	}

	type pendingSeed struct {
		id   string
		seed StartupSeed
	}
	var pending []pendingSeed
	for id, seed := range r.seeds.All() {
		if r.snapshot != nil && r.snapshot.Contains(id) {
			continue
		}
		if r.overlay.Hidden(id) {
			continue
		}
		pending = append(pending, pendingSeed{id: id, seed: seed})
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].seed.CreatedAt.Equal(pending[j].seed.CreatedAt) {
			return pending[i].seed.CreatedAt.Before(pending[j].seed.CreatedAt)
		}
		return pending[i].id < pending[j].id
	})
	for _, p := range pending {
		entries = append(entries, r.entryLocked(RosterEntry{
			ID:          p.id,
			Name:        p.seed.Name,
			Phase:       drone.PhaseStarting,
			Chats:       []string{p.seed.Chat},
			Placeholder: true,
		}))
	}

	if r.filter == nil {
		return entries
	}
	filtered := entries[:0]
	for _, entry := range entries {
		if r.filter(entry) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// entryLocked fills the queue-derived fields on a roster entry. Must
// be called with mu held.
func (r *Reconciler) entryLocked(entry RosterEntry) RosterEntry {
	for _, key := range r.queue.KeysFor(entry.ID) {
		entry.QueueDepth += r.queue.Depth(key)
		for _, prompt := range r.queue.Items(key) {
			if prompt.State == PromptFailed {
				entry.FailedDelivery = true
			}
		}
	}
	return entry
}

// Selected returns the active (drone, chat) selection.
func (r *Reconciler) Selected() (QueueKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected, r.hasSelected
}

// Prompts returns the queued prompts for a key in insertion order.
func (r *Reconciler) Prompts(key QueueKey) []QueuedPrompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Items(key)
}

// RecentlySent returns prompts delivered for the active selection,
// oldest first. The list resets when the selection moves and is capped
// at the last few deliveries.
func (r *Reconciler) RecentlySent() []SentPrompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentPrompt(nil), r.recent...)
}

// PendingNames returns fleet create rejections awaiting operator
// retry, sorted by name.
func (r *Reconciler) PendingNames() []hangar.RejectedSpec {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.pending))
	for name := range r.pending {
		names = append(names, name)
	}
	sort.Strings(names)

	rejected := make([]hangar.RejectedSpec, len(names))
	for i, name := range names {
		rejected[i] = hangar.RejectedSpec{Name: name, Error: r.pending[name]}
	}
	return rejected
}
