// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile keeps an optimistic local view of a drone fleet
// consistent with the hangar's authoritative registry.
//
// Drone creation, renaming, and deletion are asynchronous server-side
// operations observable only through periodic registry polling. The
// [Reconciler] lets the deck act on a drone before the registry
// confirms it exists, queue prompts for a drone that is not yet ready
// to receive them, and recover when optimistic assumptions turn out to
// be wrong.
//
// Four stores carry the optimistic state, all guarded by one mutex on
// the Reconciler:
//
//   - [SeedStore]: remembered creation intent per drone ID, used to
//     synthesize placeholder roster entries until the registry
//     confirms the drone. Weak and time-bounded; garbage collected on
//     every snapshot.
//   - [DeletionOverlay]: drone IDs hidden from the roster between
//     issuing a delete command and the registry confirming removal.
//   - [PromptQueue]: ordered per-(drone, chat) prompts awaiting
//     delivery. A flush loop delivers them in insertion order once the
//     target can accept prompts, one loop per key, halting on the
//     first failure.
//   - [SelectionPreference]: a one-shot hint that anchors the UI on a
//     just-created drone across polling latency.
//
// Registry snapshots arrive in order through [Reconciler.HandleSnapshot]
// (typically driven by a hangar.Poller). Each snapshot triggers the
// reconciliation tick: seed and overlay garbage collection, selection
// preference resolution, and flush loop triggers. The tick is
// idempotent; applying the same snapshot twice is a no-op.
//
// Everything here is process-lifetime state. Nothing persists across
// restarts; the stores rebuild from zero on each load.
package reconcile
