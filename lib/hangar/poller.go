// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package hangar

import (
	"context"
	"log/slog"
	"time"

	"github.com/nerfZael/drone-sub001/lib/clock"
	"github.com/nerfZael/drone-sub001/lib/drone"
)

// SnapshotSource fetches one registry snapshot. *Client implements it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*drone.Snapshot, error)
}

// Poller drives the registry polling loop: fetch a snapshot on a fixed
// interval and hand each one to Handle from a single goroutine, in
// arrival order. Staleness between polls is expected bounded latency,
// not an error condition; a failed poll is logged and skipped, leaving
// the previous snapshot current.
type Poller struct {
	// Source produces snapshots, normally a *Client.
	Source SnapshotSource

	// Interval is the poll period.
	Interval time.Duration

	// Clock schedules the polls. Tests inject a fake.
	Clock clock.Clock

	// Logger receives poll failure warnings.
	Logger *slog.Logger

	// Handle consumes each snapshot. Called from the Run goroutine
	// only, never concurrently.
	Handle func(*drone.Snapshot)
}

// Run polls until ctx is cancelled. The first poll happens immediately
// so the consumer does not sit on an empty roster for a full interval
// at startup.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := p.Clock.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	snapshot, err := p.Source.Snapshot(ctx)
	if err != nil {
		// Cancellation surfaces as a failed call; the loop exit
		// belongs to Run's select.
		if ctx.Err() != nil {
			return
		}
		p.Logger.Warn("registry poll failed", "error", err)
		return
	}
	p.Handle(snapshot)
}
