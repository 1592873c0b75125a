// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"testing"
	"time"
)

func never(string) bool  { return false }
func always(string) bool { return true }

func TestPreferenceFiresOnceWhenVisible(t *testing.T) {
	t.Parallel()

	var preference SelectionPreference
	preference.Set("d1", epoch.Add(30*time.Second))

	id, fired := preference.Resolve(epoch, always, never)
	if !fired || id != "d1" {
		t.Fatalf("Resolve = (%q, %v), want (d1, true)", id, fired)
	}
	if preference.Active() {
		t.Fatal("preference still active after firing")
	}

	// One-shot: a later tick with the drone still visible must not
	// re-fire.
	if _, fired := preference.Resolve(epoch.Add(time.Second), always, never); fired {
		t.Fatal("preference re-fired on a later tick")
	}
}

func TestPreferenceWaitsWhileHoldOpen(t *testing.T) {
	t.Parallel()

	var preference SelectionPreference
	preference.Set("d1", epoch.Add(30*time.Second))

	if _, fired := preference.Resolve(epoch.Add(29*time.Second), never, never); fired {
		t.Fatal("preference fired while invisible")
	}
	if !preference.Active() {
		t.Fatal("preference dropped inside the hold window")
	}
}

func TestPreferenceWaitsWhileSeedFresh(t *testing.T) {
	t.Parallel()

	var preference SelectionPreference
	preference.Set("d1", epoch.Add(30*time.Second))

	// Hold expired, but the backing seed is still fresh: keep waiting.
	if _, fired := preference.Resolve(epoch.Add(31*time.Second), never, always); fired {
		t.Fatal("preference fired while invisible")
	}
	if !preference.Active() {
		t.Fatal("preference dropped while its seed is fresh")
	}
}

func TestPreferenceExpires(t *testing.T) {
	t.Parallel()

	var preference SelectionPreference
	preference.Set("d1", epoch.Add(30*time.Second))

	id, fired := preference.Resolve(epoch.Add(30*time.Second), never, never)
	if fired || id != "" {
		t.Fatalf("Resolve = (%q, %v), want no fire", id, fired)
	}
	if preference.Active() {
		t.Fatal("expired preference still active")
	}
}

func TestPreferenceReplaced(t *testing.T) {
	t.Parallel()

	var preference SelectionPreference
	preference.Set("d1", epoch.Add(30*time.Second))
	preference.Set("d2", epoch.Add(time.Minute))

	if preference.DroneID() != "d2" {
		t.Fatalf("DroneID = %q, want %q", preference.DroneID(), "d2")
	}

	visible := func(id string) bool { return id == "d2" }
	id, fired := preference.Resolve(epoch, visible, never)
	if !fired || id != "d2" {
		t.Fatalf("Resolve = (%q, %v), want (d2, true)", id, fired)
	}
}

func TestPreferenceInactiveResolve(t *testing.T) {
	t.Parallel()

	var preference SelectionPreference
	if _, fired := preference.Resolve(epoch, always, always); fired {
		t.Fatal("inactive preference fired")
	}
}
