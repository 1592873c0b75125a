// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import "time"

// SelectionPreference is a short-lived hint that keeps the UI anchored
// on a just-created drone across polling latency. At most one
// preference is live at a time; setting a new one replaces the old.
//
// The preference is one-shot: it fires the first time its drone shows
// up in the visible roster and never again, so it cannot fight manual
// navigation on later ticks.
//
// Not safe for concurrent use; the Reconciler serializes access
// through its mutex.
type SelectionPreference struct {
	droneID   string
	holdUntil time.Time
}

// Set records a preference for a drone with an absolute hold deadline.
func (p *SelectionPreference) Set(droneID string, holdUntil time.Time) {
	p.droneID = droneID
	p.holdUntil = holdUntil
}

// Active reports whether a preference is waiting to fire.
func (p *SelectionPreference) Active() bool {
	return p.droneID != ""
}

// DroneID returns the preferred drone ID, or "" when inactive.
func (p *SelectionPreference) DroneID() string {
	return p.droneID
}

// Clear drops the preference.
func (p *SelectionPreference) Clear() {
	p.droneID = ""
	p.holdUntil = time.Time{}
}

// Resolve applies the one-shot selection rule for one reconciliation
// tick. If the preferred drone is visible, the preference fires:
// Resolve clears it and returns (id, true) exactly once. If the drone
// is not yet visible, the preference keeps waiting while the hold
// window is open or the backing seed is still fresh; otherwise it is
// dropped and default selection falls to the presentation layer.
//
// visible reports membership in the filtered roster the UI is showing;
// seedFresh reports whether a fresh seed still backs the drone ID.
func (p *SelectionPreference) Resolve(now time.Time, visible, seedFresh func(id string) bool) (string, bool) {
	if p.droneID == "" {
		return "", false
	}
	if visible(p.droneID) {
		id := p.droneID
		p.Clear()
		return id, true
	}
	if now.Before(p.holdUntil) || seedFresh(p.droneID) {
		return "", false
	}
	p.Clear()
	return "", false
}
