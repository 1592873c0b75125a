// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nerfZael/drone-sub001/lib/clock"
	"github.com/nerfZael/drone-sub001/lib/drone"
	"github.com/nerfZael/drone-sub001/lib/hangar"
)

// Commander is the slice of the hangar command surface the engine
// consumes. *hangar.Client implements it; tests substitute fakes.
type Commander interface {
	CreateDrone(ctx context.Context, spec hangar.CreateSpec) (hangar.CreateResult, error)
	CreateFleet(ctx context.Context, specs []hangar.CreateSpec) (hangar.FleetResult, error)
	SendPrompt(ctx context.Context, droneID, chat, text string) (string, error)
	RenameDrone(ctx context.Context, droneID, newName string) (hangar.RenameResult, error)
	DeleteDrone(ctx context.Context, droneID string) error
}

var _ Commander = (*hangar.Client)(nil)

// EventKind classifies change notifications delivered to subscribers.
type EventKind string

const (
	// EventRoster means the visible roster changed: a snapshot was
	// applied, a drone was optimistically created or hidden, or an
	// optimistic assumption was rolled back.
	EventRoster EventKind = "roster"

	// EventSelection means the active selection moved.
	EventSelection EventKind = "selection"

	// EventQueue means a prompt queue changed through enqueue, remove,
	// or retry.
	EventQueue EventKind = "queue"

	// EventPromptSent means a flush loop delivered a prompt.
	EventPromptSent EventKind = "prompt-sent"

	// EventDeliveryFailed means a flush loop halted its queue on a
	// failed delivery.
	EventDeliveryFailed EventKind = "delivery-failed"
)

// Event describes a single engine state change, delivered via the
// [Reconciler.Subscribe] channel for live-updating UIs. DroneID and
// Chat are set for queue and selection events.
type Event struct {
	Kind    EventKind
	DroneID string
	Chat    string
}

// SentPrompt is a delivered prompt mirrored into the transient
// recently-sent list for the active conversation. PromptID is the
// identifier the hangar assigned on delivery.
type SentPrompt struct {
	PromptID string
	Text     string
	SentAt   time.Time
}

// Reconciler is the optimistic reconciliation engine. It owns the four
// stores behind one mutex, applies registry snapshots in arrival
// order, and runs flush loops as goroutines bounded by its lifetime.
//
// A Reconciler is bound to the lifetime of the surrounding view; call
// [Reconciler.Close] on teardown. After Close, in-flight hangar
// responses are discarded rather than applied.
type Reconciler struct {
	commander Commander
	clock     clock.Clock
	logger    *slog.Logger
	config    Config

	// ctx is cancelled by Close so in-flight deliveries abort instead
	// of outliving the view.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	snapshot    *drone.Snapshot
	seeds       *SeedStore
	overlay     *DeletionOverlay
	queue       *PromptQueue
	flushing    map[QueueKey]struct{}
	preference  SelectionPreference
	selected    QueueKey
	hasSelected bool
	filter      func(RosterEntry) bool
	pending     map[string]string
	recent      []SentPrompt
	subscribers []chan Event
}

// New creates a reconciliation engine talking to the given commander.
// Zero-valued config fields take defaults.
func New(commander Commander, clk clock.Clock, logger *slog.Logger, config Config) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		commander: commander,
		clock:     clk,
		logger:    logger,
		config:    config.applyDefaults(),
		ctx:       ctx,
		cancel:    cancel,
		seeds:     NewSeedStore(),
		overlay:   NewDeletionOverlay(),
		queue:     NewPromptQueue(),
		flushing:  make(map[QueueKey]struct{}),
		pending:   make(map[string]string),
	}
}

// Close flips the liveness flag and cancels in-flight hangar calls.
// Flush loops exit on their next iteration; responses that arrive
// after Close are discarded. Safe to call multiple times.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
}

// Subscribe returns a channel that receives an Event whenever the
// engine's observable state changes. The channel is buffered; events
// are dropped when a subscriber falls behind. Subscribers re-derive
// current state from the engine on each event, so a dropped event is
// only a deferred redraw.
func (r *Reconciler) Subscribe() <-chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	channel := make(chan Event, 64)
	r.subscribers = append(r.subscribers, channel)
	return channel
}

// emit dispatches events to all subscribers without blocking. Callers
// must not hold mu.
func (r *Reconciler) emit(events ...Event) {
	r.mu.Lock()
	// The subscriber list is append-only, so the copied header stays
	// valid after the lock is released.
	subscribers := r.subscribers
	r.mu.Unlock()

	for _, event := range events {
		for _, subscriber := range subscribers {
			select {
			case subscriber <- event:
			default:
			}
		}
	}
}

// CreateDrone asks the hangar to create one drone. On acceptance the
// engine records a startup seed, so a placeholder roster entry appears
// immediately, and prefers the new drone for selection. On rejection
// nothing is touched; the error surfaces to the caller.
func (r *Reconciler) CreateDrone(ctx context.Context, spec hangar.CreateSpec) (hangar.CreateResult, error) {
	result, err := r.commander.CreateDrone(ctx, spec)
	if err != nil {
		return hangar.CreateResult{}, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return result, nil
	}
	now := r.clock.Now()
	r.recordCreationLocked(result, spec, now)
	r.preference.Set(result.ID, now.Add(r.config.SelectionHold))
	delete(r.pending, result.Name)
	r.mu.Unlock()

	r.emit(Event{Kind: EventRoster})
	return result, nil
}

// CreateFleet submits a batch of create specs. Accepted drones are
// seeded and the first one becomes the selection preference; rejected
// names land in the pending retry list. Partial acceptance is not an
// error.
func (r *Reconciler) CreateFleet(ctx context.Context, specs []hangar.CreateSpec) (hangar.FleetResult, error) {
	result, err := r.commander.CreateFleet(ctx, specs)
	if err != nil {
		return hangar.FleetResult{}, err
	}

	specByName := make(map[string]hangar.CreateSpec, len(specs))
	for _, spec := range specs {
		specByName[spec.Name] = spec
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return result, nil
	}
	now := r.clock.Now()
	for _, accepted := range result.Accepted {
		r.recordCreationLocked(accepted, specByName[accepted.Name], now)
		delete(r.pending, accepted.Name)
	}
	if len(result.Accepted) > 0 {
		r.preference.Set(result.Accepted[0].ID, now.Add(r.config.SelectionHold))
	}
	for _, rejected := range result.Rejected {
		r.pending[rejected.Name] = rejected.Error
	}
	r.mu.Unlock()

	r.emit(Event{Kind: EventRoster})
	return result, nil
}

// recordCreationLocked stores the startup seed for an accepted create.
// The seed's display name comes from the hangar's result; chat, agent,
// and initial prompt are the user's intent from the spec. Must be
// called with mu held.
func (r *Reconciler) recordCreationLocked(result hangar.CreateResult, spec hangar.CreateSpec, now time.Time) {
	chat := spec.Chat
	if chat == "" {
		chat = hangar.DefaultChat
	}
	r.seeds.Record([]string{result.ID}, SeedIntent{
		Name:          result.Name,
		Chat:          chat,
		Agent:         spec.Agent,
		InitialPrompt: spec.InitialPrompt,
	}, now)
}

// SendPrompt queues a prompt for delivery to a drone's chat and
// returns the queued item. Delivery happens asynchronously through a
// flush loop: immediately when the latest snapshot already shows the
// drone accepting prompts, otherwise once a later snapshot does.
// Empty text is a no-op returning ok=false.
func (r *Reconciler) SendPrompt(droneID, chat, text string) (QueuedPrompt, bool) {
	if chat == "" {
		chat = hangar.DefaultChat
	}
	key := QueueKey{DroneID: droneID, Chat: chat}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return QueuedPrompt{}, false
	}
	prompt, ok := r.queue.Enqueue(key, text, r.clock.Now())
	if ok && r.droneFlushableLocked(droneID) {
		r.maybeStartFlushLocked(key)
	}
	r.mu.Unlock()

	if !ok {
		return QueuedPrompt{}, false
	}
	r.emit(Event{Kind: EventQueue, DroneID: droneID, Chat: chat})
	return prompt, true
}

// Rename asks the hangar to rename a drone. Visible state never
// changes before the command is accepted; on acceptance only the
// seed's display name is refreshed (when one still exists) and the
// authoritative name arrives with the next snapshot.
func (r *Reconciler) Rename(ctx context.Context, droneID, newName string) (hangar.RenameResult, error) {
	result, err := r.commander.RenameDrone(ctx, droneID, newName)
	if err != nil {
		return hangar.RenameResult{}, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return result, nil
	}
	r.seeds.Rename(droneID, result.NewName)
	r.mu.Unlock()

	r.emit(Event{Kind: EventRoster})
	return result, nil
}

// Delete hides the drone from the roster immediately, then asks the
// hangar to delete it. The drone stays hidden until the registry
// confirms the removal. If the command fails, the overlay entry is
// rolled back and the drone is visible again at once.
func (r *Reconciler) Delete(ctx context.Context, droneID string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.overlay.MarkDeleting(droneID)
	r.mu.Unlock()
	r.emit(Event{Kind: EventRoster})

	if err := r.commander.DeleteDrone(ctx, droneID); err != nil {
		r.mu.Lock()
		if !r.closed {
			r.overlay.Rollback(droneID)
		}
		r.mu.Unlock()
		r.emit(Event{Kind: EventRoster})
		return err
	}
	return nil
}

// RemovePrompt deletes a prompt from a queue in any state. Removing a
// failed head unblocks the prompts behind it; when the latest snapshot
// shows the drone accepting prompts, a new flush starts immediately.
func (r *Reconciler) RemovePrompt(key QueueKey, id string) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	removed := r.queue.Remove(key, id)
	if removed && r.droneFlushableLocked(key.DroneID) {
		r.maybeStartFlushLocked(key)
	}
	r.mu.Unlock()

	if removed {
		r.emit(Event{Kind: EventQueue, DroneID: key.DroneID, Chat: key.Chat})
	}
	return removed
}

// RetryPrompt transitions a failed prompt back to queued and, when the
// drone can accept prompts, starts a new flush. This is the operator's
// explicit retry; the engine never retries failed deliveries on its
// own.
func (r *Reconciler) RetryPrompt(key QueueKey, id string) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	retried := r.queue.MarkQueued(key, id, r.clock.Now())
	if retried && r.droneFlushableLocked(key.DroneID) {
		r.maybeStartFlushLocked(key)
	}
	r.mu.Unlock()

	if retried {
		r.emit(Event{Kind: EventQueue, DroneID: key.DroneID, Chat: key.Chat})
	}
	return retried
}

// DismissPending drops a rejected fleet name from the pending retry
// list.
func (r *Reconciler) DismissPending(name string) {
	r.mu.Lock()
	delete(r.pending, name)
	r.mu.Unlock()
}

// Select records the presently active (drone, chat) selection. Manual
// selection clears any waiting preference so a later tick cannot yank
// the user away from where they navigated. Changing the selection
// resets the recently-sent list; it describes the active conversation
// only.
func (r *Reconciler) Select(droneID, chat string) {
	if chat == "" {
		chat = hangar.DefaultChat
	}
	key := QueueKey{DroneID: droneID, Chat: chat}

	r.mu.Lock()
	r.preference.Clear()
	changed := !r.hasSelected || r.selected != key
	if changed {
		r.selected = key
		r.hasSelected = true
		r.recent = nil
	}
	r.mu.Unlock()

	if changed {
		r.emit(Event{Kind: EventSelection, DroneID: droneID, Chat: chat})
	}
}

// SetRosterFilter installs the predicate the presentation layer uses
// to scope the visible roster; nil shows everything. The selection
// preference resolves against the filtered view, so it can only land
// on a drone the UI is actually showing.
func (r *Reconciler) SetRosterFilter(filter func(RosterEntry) bool) {
	r.mu.Lock()
	r.filter = filter
	r.mu.Unlock()
}

// HandleSnapshot applies one registry snapshot: the reconciliation
// tick. Seeds and overlay entries are garbage collected, the selection
// preference is resolved, and flush loops start for every drone that
// can now accept prompts. The tick is idempotent: applying the same
// snapshot again at the same time changes nothing.
//
// Snapshots must arrive in order; the hangar poller guarantees that.
func (r *Reconciler) HandleSnapshot(snapshot *drone.Snapshot) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	now := r.clock.Now()
	r.snapshot = snapshot

	r.seeds.Sweep(snapshot, now, r.config.SeedFreshness)
	r.overlay.Sweep(snapshot, r.seeds)

	events := []Event{{Kind: EventRoster}}

	if r.preference.Active() {
		roster := r.rosterLocked()
		visible := func(id string) bool {
			for _, entry := range roster {
				if entry.ID == id {
					return true
				}
			}
			return false
		}
		seedFresh := func(id string) bool {
			seed, ok := r.seeds.Get(id)
			return ok && Fresh(seed.CreatedAt, now, r.config.SeedFreshness)
		}
		if id, fired := r.preference.Resolve(now, visible, seedFresh); fired {
			key := QueueKey{DroneID: id, Chat: r.chatForLocked(id)}
			if !r.hasSelected || r.selected != key {
				r.selected = key
				r.hasSelected = true
				r.recent = nil
			}
			events = append(events, Event{Kind: EventSelection, DroneID: key.DroneID, Chat: key.Chat})
		}
	}

	for _, record := range snapshot.Records() {
		if !record.Phase.CanAcceptPrompts() {
			continue
		}
		for _, key := range r.queue.KeysFor(record.ID) {
			r.maybeStartFlushLocked(key)
		}
	}
	r.mu.Unlock()

	r.emit(events...)
}

// chatForLocked picks the active chat when selection lands on a drone:
// the seeded chat when a seed survives, else the drone's first chat
// from the snapshot, else the hangar default. Must be called with mu
// held.
func (r *Reconciler) chatForLocked(droneID string) string {
	if seed, ok := r.seeds.Get(droneID); ok && seed.Chat != "" {
		return seed.Chat
	}
	if r.snapshot != nil {
		if record, ok := r.snapshot.Lookup(droneID); ok && len(record.Chats) > 0 {
			return record.Chats[0]
		}
	}
	return hangar.DefaultChat
}

// droneFlushableLocked reports whether the latest snapshot shows the
// drone in a phase that accepts prompt delivery. With no snapshot yet,
// nothing is flushable. Must be called with mu held.
func (r *Reconciler) droneFlushableLocked(droneID string) bool {
	if r.snapshot == nil {
		return false
	}
	record, ok := r.snapshot.Lookup(droneID)
	return ok && record.Phase.CanAcceptPrompts()
}
