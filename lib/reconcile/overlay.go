// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import "github.com/nerfZael/drone-sub001/lib/drone"

// DeletionOverlay hides drones from the visible roster between issuing
// a delete command and the registry confirming removal. It is purely a
// visibility filter over the authoritative list plus seed placeholders;
// it never deletes anything itself.
//
// Not safe for concurrent use; the Reconciler serializes access
// through its mutex.
type DeletionOverlay struct {
	deleting map[string]struct{}
}

// NewDeletionOverlay returns an empty overlay.
func NewDeletionOverlay() *DeletionOverlay {
	return &DeletionOverlay{deleting: make(map[string]struct{})}
}

// MarkDeleting hides a drone ID. Called before issuing the delete
// command so the roster never shows a drone whose deletion is already
// in flight.
func (o *DeletionOverlay) MarkDeleting(id string) {
	o.deleting[id] = struct{}{}
}

// Rollback unhides a drone ID after its delete command failed. The
// drone becomes visible again immediately, without waiting for a
// snapshot.
func (o *DeletionOverlay) Rollback(id string) {
	delete(o.deleting, id)
}

// Hidden reports whether a drone ID is currently hidden.
func (o *DeletionOverlay) Hidden(id string) bool {
	_, hidden := o.deleting[id]
	return hidden
}

// Len returns the number of hidden IDs.
func (o *DeletionOverlay) Len() int {
	return len(o.deleting)
}

// Sweep drops every hidden ID that is confirmed gone: absent from the
// snapshot and no longer backed by a seed placeholder. IDs the
// snapshot still contains stay hidden until the registry confirms the
// deletion; IDs with a live seed stay hidden so a deleted placeholder
// cannot resurface before its seed expires.
func (o *DeletionOverlay) Sweep(snapshot *drone.Snapshot, seeds *SeedStore) {
	for id := range o.deleting {
		if snapshot.Contains(id) || seeds.Contains(id) {
			continue
		}
		delete(o.deleting, id)
	}
}
