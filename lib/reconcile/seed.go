// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"time"

	"github.com/nerfZael/drone-sub001/lib/drone"
)

// Fresh reports whether an optimistic record written at recordedAt is
// still inside its grace window at now.
func Fresh(recordedAt, now time.Time, window time.Duration) bool {
	return now.Sub(recordedAt) < window
}

// SeedIntent is the creation intent remembered for a drone while the
// registry has not yet confirmed it exists. Agent is empty when the
// user deferred to the hangar default.
type SeedIntent struct {
	Name          string
	Chat          string
	Agent         string
	InitialPrompt string
}

// StartupSeed is a recorded [SeedIntent] stamped with its creation
// time. The timestamp drives freshness-based garbage collection.
type StartupSeed struct {
	SeedIntent
	CreatedAt time.Time
}

// SeedStore remembers creation intent per drone ID, independent of
// whether the registry snapshot yet contains that ID. Seeds are weak,
// time-bounded records: they back placeholder roster entries and are
// removed only by [SeedStore.Sweep] (callers add and rename, never
// delete).
//
// Not safe for concurrent use; the Reconciler serializes access
// through its mutex.
type SeedStore struct {
	seeds map[string]StartupSeed
}

// NewSeedStore returns an empty seed store.
func NewSeedStore() *SeedStore {
	return &SeedStore{seeds: make(map[string]StartupSeed)}
}

// Record stores or overwrites one seed per drone ID, stamped with now.
func (s *SeedStore) Record(ids []string, intent SeedIntent, now time.Time) {
	for _, id := range ids {
		s.seeds[id] = StartupSeed{SeedIntent: intent, CreatedAt: now}
	}
}

// Rename updates the remembered display name when a seed exists for
// the drone. Missing seeds are ignored: the drone has settled and the
// registry owns its name.
func (s *SeedStore) Rename(id, newName string) {
	seed, ok := s.seeds[id]
	if !ok {
		return
	}
	seed.Name = newName
	s.seeds[id] = seed
}

// Get returns the seed for a drone ID.
func (s *SeedStore) Get(id string) (StartupSeed, bool) {
	seed, ok := s.seeds[id]
	return seed, ok
}

// Contains reports whether a seed exists for the drone ID.
func (s *SeedStore) Contains(id string) bool {
	_, ok := s.seeds[id]
	return ok
}

// Len returns the number of live seeds.
func (s *SeedStore) Len() int {
	return len(s.seeds)
}

// All returns a copy of the live seeds keyed by drone ID.
func (s *SeedStore) All() map[string]StartupSeed {
	all := make(map[string]StartupSeed, len(s.seeds))
	for id, seed := range s.seeds {
		all[id] = seed
	}
	return all
}

// Sweep garbage collects seeds against a registry snapshot. A seed
// whose drone appears in the snapshot is dropped once the drone has
// settled: phase no longer provisioning and the busy flag clear. A
// seed whose drone is absent is dropped once its age reaches the
// freshness window; before that it is kept so a placeholder roster
// entry can still be synthesized.
//
// Idempotent: sweeping twice against the same snapshot at the same
// time is a no-op.
func (s *SeedStore) Sweep(snapshot *drone.Snapshot, now time.Time, freshness time.Duration) {
	for id, seed := range s.seeds {
		record, present := snapshot.Lookup(id)
		if present {
			if !record.Phase.Provisioning() && !record.Busy {
				delete(s.seeds, id)
			}
			continue
		}
		if !Fresh(seed.CreatedAt, now, freshness) {
			delete(s.seeds, id)
		}
	}
}
