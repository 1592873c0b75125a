// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

// Drone-hangar-mock is an in-memory hangar service for developing and
// demoing the deck without real sandboxes. It speaks the full hangar
// socket protocol and simulates the asynchronous parts: drones walk
// starting → seeding → ready on flag-tunable delays, initial prompts
// are delivered server-side during seeding, and a drone reports busy
// for a while after accepting a prompt.
//
// Failure injection for exercising the deck's recovery paths:
//
//   - --reject-names: names the mock rejects at create time with
//     duplicate-name, as if they already existed
//   - --error-names: names whose provisioning ends in phase error
//   - --fail-prompts-for: names whose prompt deliveries fail
//
// The binary exposes the six protocol actions: create-drone,
// create-fleet, send-prompt, rename-drone, delete-drone, snapshot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/nerfZael/drone-sub001/lib/clock"
	"github.com/nerfZael/drone-sub001/lib/codec"
	"github.com/nerfZael/drone-sub001/lib/drone"
	"github.com/nerfZael/drone-sub001/lib/hangar"
	"github.com/nerfZael/drone-sub001/lib/process"
	"github.com/nerfZael/drone-sub001/lib/version"
)

// defaultSocket is where the mock listens when --socket is not given.
// Matches the deck's default hangar socket.
const defaultSocket = "/tmp/drone-hangar.sock"

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("drone-hangar-mock", pflag.ContinueOnError)
	socketPath := flagSet.String("socket", defaultSocket, "unix socket path to serve the hangar protocol on")
	startingDelay := flagSet.Duration("starting-delay", 2*time.Second, "time a new drone spends in phase starting")
	seedingDelay := flagSet.Duration("seeding-delay", 3*time.Second, "time a drone spends in phase seeding")
	busyFor := flagSet.Duration("busy-for", 5*time.Second, "how long a drone reports busy after accepting a prompt")
	rejectNames := flagSet.StringSlice("reject-names", nil, "names rejected at create time with duplicate-name")
	errorNames := flagSet.StringSlice("error-names", nil, "names whose provisioning ends in phase error")
	failPromptsFor := flagSet.StringSlice("fail-prompts-for", nil, "names whose prompt deliveries fail")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the deck binary.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("drone-hangar-mock")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := process.NewLogger(slog.LevelInfo)

	mock := &mockHangar{
		clock:          clock.Real(),
		logger:         logger,
		startingDelay:  *startingDelay,
		seedingDelay:   *seedingDelay,
		busyFor:        *busyFor,
		rejectNames:    nameSet(*rejectNames),
		errorNames:     nameSet(*errorNames),
		failPromptsFor: nameSet(*failPromptsFor),
		drones:         make(map[string]*mockDrone),
	}

	server := hangar.NewSocketServer(*socketPath, logger)
	server.Handle(hangar.ActionCreateDrone, mock.handleCreateDrone)
	server.Handle(hangar.ActionCreateFleet, mock.handleCreateFleet)
	server.Handle(hangar.ActionSendPrompt, mock.handleSendPrompt)
	server.Handle(hangar.ActionRenameDrone, mock.handleRenameDrone)
	server.Handle(hangar.ActionDeleteDrone, mock.handleDeleteDrone)
	server.Handle(hangar.ActionSnapshot, mock.handleSnapshot)

	logger.Info("hangar mock running",
		"socket", *socketPath,
		"starting_delay", *startingDelay,
		"seeding_delay", *seedingDelay,
	)
	return server.Serve(ctx)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `In-memory hangar service for developing the deck.

Drones exist only in this process. New drones walk starting → seeding
→ ready on the configured delays; deleting the process deletes the
fleet. Point drone-deck at the same socket:

  drone-hangar-mock --socket /tmp/drone-hangar.sock &
  drone-deck --hangar-socket /tmp/drone-hangar.sock

Failure injection:

  # "scout" behaves as if the name were taken
  drone-hangar-mock --reject-names scout

  # "lab-rat" provisions into phase error
  drone-hangar-mock --error-names lab-rat

  # prompt deliveries to "flaky" fail
  drone-hangar-mock --fail-prompts-for flaky

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// nameSet folds a repeatable flag's values into a lookup set.
func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// mockDrone is the mock's mutable state for one drone. busyUntil
// models agent activity: snapshots report Busy while the clock is
// before it.
type mockDrone struct {
	id            string
	name          string
	phase         drone.Phase
	busyUntil     time.Time
	chats         []string
	initialPrompt string
}

// mockHangar holds the in-memory registry and simulation parameters.
// One mutex guards the drone map; phase walks run on clock timers.
type mockHangar struct {
	clock  clock.Clock
	logger *slog.Logger

	startingDelay time.Duration
	seedingDelay  time.Duration
	busyFor       time.Duration

	rejectNames    map[string]bool
	errorNames     map[string]bool
	failPromptsFor map[string]bool

	mu     sync.Mutex
	drones map[string]*mockDrone
	// order preserves creation order for snapshots; the registry
	// reports drones in the order they were created.
	order []string
}

type createRequest struct {
	Spec hangar.CreateSpec `cbor:"spec"`
}

type fleetRequest struct {
	Specs []hangar.CreateSpec `cbor:"specs"`
}

type promptRequest struct {
	DroneID string `cbor:"drone_id"`
	Chat    string `cbor:"chat"`
	Text    string `cbor:"text"`
}

type renameRequest struct {
	DroneID string `cbor:"drone_id"`
	NewName string `cbor:"new_name"`
}

type deleteRequest struct {
	DroneID string `cbor:"drone_id"`
}

// checkNameLocked validates a requested drone name against the naming
// rule, the injection list, and the live registry. excludeID skips one
// drone in the collision scan so a rename to the drone's current name
// succeeds. Must be called with mu held.
func (m *mockHangar) checkNameLocked(name, excludeID string) error {
	if name == "" {
		return hangar.Errf(hangar.ErrCodeInvalidName, "drone name is required")
	}
	if !drone.ValidName(name) {
		return hangar.Errf(hangar.ErrCodeInvalidName, "invalid drone name %q", name)
	}
	if m.rejectNames[name] {
		return hangar.Errf(hangar.ErrCodeDuplicateName, "a drone named %q already exists", name)
	}
	for id, existing := range m.drones {
		if id == excludeID {
			continue
		}
		if existing.name == name {
			return hangar.Errf(hangar.ErrCodeDuplicateName, "a drone named %q already exists", name)
		}
	}
	return nil
}

// createLocked registers a new drone in phase starting. Must be called
// with mu held; the caller schedules the provisioning walk after
// releasing the lock.
func (m *mockHangar) createLocked(spec hangar.CreateSpec) *mockDrone {
	chat := spec.Chat
	if chat == "" {
		chat = hangar.DefaultChat
	}
	created := &mockDrone{
		id:            uuid.NewString(),
		name:          spec.Name,
		phase:         drone.PhaseStarting,
		chats:         []string{chat},
		initialPrompt: spec.InitialPrompt,
	}
	m.drones[created.id] = created
	m.order = append(m.order, created.id)
	return created
}

// scheduleProvisioning walks a drone through starting → seeding →
// ready (or error, for names under --error-names). Each step checks
// the drone still exists and is still in the expected phase, so a
// delete mid-walk just stops the walk.
func (m *mockHangar) scheduleProvisioning(id string) {
	m.clock.AfterFunc(m.startingDelay, func() {
		m.mu.Lock()
		current, ok := m.drones[id]
		if !ok || current.phase != drone.PhaseStarting {
			m.mu.Unlock()
			return
		}
		current.phase = drone.PhaseSeeding
		name, initialPrompt := current.name, current.initialPrompt
		m.mu.Unlock()

		if initialPrompt != "" {
			// The hangar owns initial prompt delivery; clients only
			// ever see the phase.
			m.logger.Info("seeding initial prompt", "drone", name, "chars", len(initialPrompt))
		}

		m.clock.AfterFunc(m.seedingDelay, func() {
			m.mu.Lock()
			current, ok := m.drones[id]
			if !ok || current.phase != drone.PhaseSeeding {
				m.mu.Unlock()
				return
			}
			phase := drone.PhaseReady
			if m.errorNames[current.name] {
				phase = drone.PhaseError
			}
			current.phase = phase
			name := current.name
			m.mu.Unlock()

			m.logger.Info("drone provisioned", "drone", name, "phase", string(phase))
		})
	})
}

func (m *mockHangar) handleCreateDrone(_ context.Context, raw []byte) (any, error) {
	var request createRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, errors.New("invalid create-drone request")
	}

	m.mu.Lock()
	if err := m.checkNameLocked(request.Spec.Name, ""); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	created := m.createLocked(request.Spec)
	m.mu.Unlock()

	m.logger.Info("drone created",
		"drone_id", created.id,
		"name", created.name,
		"agent", request.Spec.Agent,
	)
	m.scheduleProvisioning(created.id)
	return hangar.CreateResult{ID: created.id, Name: created.name, Phase: drone.PhaseStarting}, nil
}

func (m *mockHangar) handleCreateFleet(_ context.Context, raw []byte) (any, error) {
	var request fleetRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, errors.New("invalid create-fleet request")
	}
	if len(request.Specs) == 0 {
		return nil, errors.New("create-fleet needs at least one spec")
	}

	result := hangar.FleetResult{Total: len(request.Specs)}
	var created []string

	m.mu.Lock()
	for _, spec := range request.Specs {
		// Specs earlier in the batch are already registered, so
		// intra-batch duplicates reject naturally.
		if err := m.checkNameLocked(spec.Name, ""); err != nil {
			result.Rejected = append(result.Rejected, hangar.RejectedSpec{
				Name:  spec.Name,
				Error: err.Error(),
			})
			continue
		}
		accepted := m.createLocked(spec)
		created = append(created, accepted.id)
		result.Accepted = append(result.Accepted, hangar.CreateResult{
			ID:    accepted.id,
			Name:  accepted.name,
			Phase: drone.PhaseStarting,
		})
	}
	m.mu.Unlock()

	for _, id := range created {
		m.scheduleProvisioning(id)
	}
	m.logger.Info("fleet created",
		"accepted", len(result.Accepted),
		"rejected", len(result.Rejected),
	)
	return result, nil
}

func (m *mockHangar) handleSendPrompt(_ context.Context, raw []byte) (any, error) {
	var request promptRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, errors.New("invalid send-prompt request")
	}
	if request.Text == "" {
		return nil, errors.New("prompt text is required")
	}
	chat := request.Chat
	if chat == "" {
		chat = hangar.DefaultChat
	}

	m.mu.Lock()
	target, ok := m.drones[request.DroneID]
	if !ok {
		m.mu.Unlock()
		return nil, hangar.Errf(hangar.ErrCodeNotFound, "no drone with id %q", request.DroneID)
	}
	if !target.phase.CanAcceptPrompts() {
		err := hangar.Errf(hangar.ErrCodeDroneBusy, "drone %q cannot take prompts in phase %s", target.name, target.phase)
		m.mu.Unlock()
		return nil, err
	}
	if m.failPromptsFor[target.name] {
		err := hangar.Errf(hangar.ErrCodeInternal, "injected delivery failure for %q", target.name)
		m.mu.Unlock()
		return nil, err
	}
	// Prompting a chat the drone does not have yet creates it.
	if !slices.Contains(target.chats, chat) {
		target.chats = append(target.chats, chat)
	}
	target.busyUntil = m.clock.Now().Add(m.busyFor)
	name := target.name
	m.mu.Unlock()

	promptID := uuid.NewString()
	m.logger.Info("prompt delivered",
		"drone", name,
		"chat", chat,
		"prompt_id", promptID,
		"chars", len(request.Text),
	)
	return hangar.PromptReceipt{PromptID: promptID}, nil
}

func (m *mockHangar) handleRenameDrone(_ context.Context, raw []byte) (any, error) {
	var request renameRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, errors.New("invalid rename-drone request")
	}

	m.mu.Lock()
	target, ok := m.drones[request.DroneID]
	if !ok {
		m.mu.Unlock()
		return nil, hangar.Errf(hangar.ErrCodeNotFound, "no drone with id %q", request.DroneID)
	}
	if err := m.checkNameLocked(request.NewName, request.DroneID); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	oldName := target.name
	target.name = request.NewName
	m.mu.Unlock()

	m.logger.Info("drone renamed",
		"drone_id", request.DroneID,
		"old_name", oldName,
		"new_name", request.NewName,
	)
	return hangar.RenameResult{ID: request.DroneID, OldName: oldName, NewName: request.NewName}, nil
}

func (m *mockHangar) handleDeleteDrone(_ context.Context, raw []byte) (any, error) {
	var request deleteRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, errors.New("invalid delete-drone request")
	}

	m.mu.Lock()
	target, ok := m.drones[request.DroneID]
	if !ok {
		m.mu.Unlock()
		return nil, hangar.Errf(hangar.ErrCodeNotFound, "no drone with id %q", request.DroneID)
	}
	delete(m.drones, request.DroneID)
	pruned := m.order[:0]
	for _, id := range m.order {
		if id != request.DroneID {
			pruned = append(pruned, id)
		}
	}
	m.order = pruned
	name := target.name
	m.mu.Unlock()

	m.logger.Info("drone deleted", "drone_id", request.DroneID, "name", name)
	return nil, nil
}

func (m *mockHangar) handleSnapshot(_ context.Context, _ []byte) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	records := make([]drone.Record, 0, len(m.order))
	for _, id := range m.order {
		current := m.drones[id]
		records = append(records, drone.Record{
			ID:    current.id,
			Name:  current.name,
			Phase: current.phase,
			Busy:  now.Before(current.busyUntil),
			Chats: append([]string(nil), current.chats...),
		})
	}
	return hangar.SnapshotData{Drones: records}, nil
}
