// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the deck depends on. Production
// code injects Real(); tests inject Fake() and advance time explicitly.
//
// Anything that reads the current time or schedules future work (seed
// freshness checks, selection hold deadlines, the registry poll ticker,
// the mock hangar's phase progression) goes through a Clock rather
// than calling the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for duration d, then calls f in its own
	// goroutine (real clock) or synchronously during Advance (fake
	// clock). The returned Timer cancels the pending call with Stop.
	// If d <= 0, f runs immediately.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker returns a Ticker delivering ticks on C at the given
	// interval. Panics if d <= 0. Matches time.NewTicker, including
	// the drop-if-full behavior of the capacity-1 channel.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. Read ticks from C; call Stop when
// done. Stop does not close C.
type Ticker struct {
	// C delivers ticks. Buffered with capacity 1; ticks the consumer
	// misses are dropped, not queued.
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. No ticks are delivered after Stop returns.
func (t *Ticker) Stop() { t.stopFunc() }

// Timer is a scheduled one-shot call created by AfterFunc.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. Returns true if the call stops
// the timer, false if it already fired or was already stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }
