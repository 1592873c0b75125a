// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"testing"
	"time"

	"github.com/nerfZael/drone-sub001/lib/drone"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const testFreshness = 45 * time.Second

func TestFresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"just recorded", 0, true},
		{"inside window", testFreshness - time.Second, true},
		{"at window boundary", testFreshness, false},
		{"past window", testFreshness + time.Minute, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := Fresh(epoch, epoch.Add(testCase.elapsed), testFreshness)
			if got != testCase.want {
				t.Errorf("Fresh(+%v) = %v, want %v", testCase.elapsed, got, testCase.want)
			}
		})
	}
}

func TestSeedStoreRecordAndGet(t *testing.T) {
	t.Parallel()

	store := NewSeedStore()
	intent := SeedIntent{Name: "scout", Chat: "default", Agent: "sonnet", InitialPrompt: "hello"}
	store.Record([]string{"d1", "d2"}, intent, epoch)

	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
	seed, ok := store.Get("d1")
	if !ok {
		t.Fatal("Get(d1) missing")
	}
	if seed.Name != "scout" {
		t.Errorf("Name = %q, want %q", seed.Name, "scout")
	}
	if !seed.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", seed.CreatedAt, epoch)
	}
	if store.Contains("d3") {
		t.Error("Contains(d3) = true for unrecorded id")
	}
}

func TestSeedStoreRecordOverwrites(t *testing.T) {
	t.Parallel()

	store := NewSeedStore()
	store.Record([]string{"d1"}, SeedIntent{Name: "old"}, epoch)
	store.Record([]string{"d1"}, SeedIntent{Name: "new"}, epoch.Add(time.Second))

	seed, _ := store.Get("d1")
	if seed.Name != "new" {
		t.Errorf("Name = %q, want %q", seed.Name, "new")
	}
	if !seed.CreatedAt.Equal(epoch.Add(time.Second)) {
		t.Errorf("CreatedAt not refreshed: %v", seed.CreatedAt)
	}
}

func TestSeedStoreRename(t *testing.T) {
	t.Parallel()

	store := NewSeedStore()
	store.Record([]string{"d1"}, SeedIntent{Name: "scout", Chat: "default"}, epoch)

	store.Rename("d1", "ranger")
	seed, _ := store.Get("d1")
	if seed.Name != "ranger" {
		t.Errorf("Name = %q, want %q", seed.Name, "ranger")
	}
	if seed.Chat != "default" {
		t.Errorf("Rename touched Chat: %q", seed.Chat)
	}
	if !seed.CreatedAt.Equal(epoch) {
		t.Errorf("Rename touched CreatedAt: %v", seed.CreatedAt)
	}

	// Rename of an unknown id is ignored, not recorded.
	store.Rename("d9", "ghost")
	if store.Contains("d9") {
		t.Error("Rename created a seed for an unknown id")
	}
}

func TestSeedStoreSweepSettled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		record   drone.Record
		wantGone bool
	}{
		{
			name:     "ready and idle settles",
			record:   drone.Record{ID: "d1", Phase: drone.PhaseReady},
			wantGone: true,
		},
		{
			name:     "error phase settles",
			record:   drone.Record{ID: "d1", Phase: drone.PhaseError},
			wantGone: true,
		},
		{
			name:     "ready but busy is kept",
			record:   drone.Record{ID: "d1", Phase: drone.PhaseReady, Busy: true},
			wantGone: false,
		},
		{
			name:     "still starting is kept",
			record:   drone.Record{ID: "d1", Phase: drone.PhaseStarting},
			wantGone: false,
		},
		{
			name:     "still seeding is kept",
			record:   drone.Record{ID: "d1", Phase: drone.PhaseSeeding},
			wantGone: false,
		},
		{
			name:     "unknown phase settles when idle",
			record:   drone.Record{ID: "d1", Phase: drone.Phase("hibernating")},
			wantGone: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			store := NewSeedStore()
			store.Record([]string{"d1"}, SeedIntent{Name: "scout"}, epoch)

			snapshot := drone.NewSnapshot([]drone.Record{testCase.record})
			store.Sweep(snapshot, epoch.Add(time.Second), testFreshness)

			if gone := !store.Contains("d1"); gone != testCase.wantGone {
				t.Errorf("seed gone = %v, want %v", gone, testCase.wantGone)
			}
		})
	}
}

func TestSeedStoreSweepTimeout(t *testing.T) {
	t.Parallel()

	store := NewSeedStore()
	store.Record([]string{"d1"}, SeedIntent{Name: "scout"}, epoch)
	empty := drone.NewSnapshot(nil)

	// Absent from the snapshot but still fresh: kept for placeholder
	// synthesis.
	store.Sweep(empty, epoch.Add(testFreshness-time.Second), testFreshness)
	if !store.Contains("d1") {
		t.Fatal("seed dropped while still fresh")
	}

	// First sweep at or past the window drops it.
	store.Sweep(empty, epoch.Add(testFreshness), testFreshness)
	if store.Contains("d1") {
		t.Fatal("seed survived past the freshness window")
	}
}

func TestSeedStoreSweepIdempotent(t *testing.T) {
	t.Parallel()

	store := NewSeedStore()
	store.Record([]string{"d1", "d2"}, SeedIntent{Name: "scout"}, epoch)
	snapshot := drone.NewSnapshot([]drone.Record{
		{ID: "d1", Phase: drone.PhaseReady},
		{ID: "d2", Phase: drone.PhaseStarting},
	})

	now := epoch.Add(time.Second)
	store.Sweep(snapshot, now, testFreshness)
	after := store.All()

	store.Sweep(snapshot, now, testFreshness)
	again := store.All()

	if len(after) != 1 || len(again) != 1 {
		t.Fatalf("seed counts after sweeps = %d, %d, want 1, 1", len(after), len(again))
	}
	if _, ok := again["d2"]; !ok {
		t.Error("second sweep dropped the still-provisioning seed")
	}
}
