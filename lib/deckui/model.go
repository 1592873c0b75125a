// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nerfZael/drone-sub001/lib/hangar"
	"github.com/nerfZael/drone-sub001/lib/reconcile"
)

// Engine is the slice of the reconciliation engine the TUI consumes.
// *reconcile.Reconciler implements it; tests substitute a fake.
//
// Reads return derived views over engine state. Selection, filter, and
// queue edits apply synchronously; CreateDrone, Rename, and Delete
// block on the hangar socket and run inside tea.Cmd goroutines.
type Engine interface {
	Roster() []reconcile.RosterEntry
	Selected() (reconcile.QueueKey, bool)
	Prompts(key reconcile.QueueKey) []reconcile.QueuedPrompt
	RecentlySent() []reconcile.SentPrompt
	PendingNames() []hangar.RejectedSpec
	Subscribe() <-chan reconcile.Event

	Select(droneID, chat string)
	SetRosterFilter(filter func(reconcile.RosterEntry) bool)
	SendPrompt(droneID, chat, text string) (reconcile.QueuedPrompt, bool)
	RemovePrompt(key reconcile.QueueKey, id string) bool
	RetryPrompt(key reconcile.QueueKey, id string) bool
	DismissPending(name string)

	CreateDrone(ctx context.Context, spec hangar.CreateSpec) (hangar.CreateResult, error)
	Rename(ctx context.Context, droneID, newName string) (hangar.RenameResult, error)
	Delete(ctx context.Context, droneID string) error
}

var _ Engine = (*reconcile.Reconciler)(nil)

// InputMode identifies what the footer input line is editing. All
// keyboard input routes to the input while a mode is active.
type InputMode int

const (
	// InputNone means no input is active; keys drive the roster.
	InputNone InputMode = iota
	// InputPrompt composes a prompt for the active selection.
	InputPrompt
	// InputCreate names a new drone.
	InputCreate
	// InputRename renames the selected drone.
	InputRename
	// InputFilter edits the roster filter query, applied on every
	// keystroke.
	InputFilter
)

// engineEventMsg wraps an engine Event for delivery through the
// bubbletea message loop.
type engineEventMsg struct {
	event reconcile.Event
}

// commandResultMsg reports completion of an asynchronous hangar
// command. verb names the command for the failure notice.
type commandResultMsg struct {
	verb string
	err  error
}

// noticeFadeMsg is sent after a delay to clear the transient status
// notice and restore the keyboard help line.
type noticeFadeMsg struct{}

// noticeFadeDelay is how long notices stay visible in the footer
// before fading back to the keyboard help line.
const noticeFadeDelay = 5 * time.Second

func scheduleNoticeFade() tea.Cmd {
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

// Model is the top-level bubbletea model for the deck TUI.
type Model struct {
	engine Engine
	theme  Theme
	keys   KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Visible roster, refreshed from the engine on every engine
	// event. The cursor rides the engine selection: moving it selects,
	// and engine-side selection moves pull it along.
	roster       []reconcile.RosterEntry
	cursor       int
	scrollOffset int

	// Footer input line, shared by the prompt composer, the create and
	// rename name entry, and the filter. renameID pins the rename
	// target so a roster change mid-edit cannot redirect it.
	inputMode InputMode
	input     textinput.Model
	renameID  string

	// Provisioning spinner. spinnerLive tracks whether the tick timer
	// is running; it stops when nothing on the roster is provisioning.
	spinner     spinner.Model
	spinnerLive bool

	// Current roster filter query; empty means no filter.
	filterQuery string

	// Transient footer notice (command failures, delivery failures,
	// routed log records). Cleared by noticeFadeMsg.
	notice      string
	noticeLevel slog.Level

	eventChannel <-chan reconcile.Event
}

// NewModel creates a Model connected to the given engine. The roster
// and selection are read immediately so the first frame is populated
// without waiting for an engine event.
func NewModel(engine Engine) Model {
	input := textinput.New()
	input.Prompt = "> "

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	model := Model{
		engine:       engine,
		theme:        DefaultTheme,
		keys:         DefaultKeyMap,
		input:        input,
		spinner:      spin,
		eventChannel: engine.Subscribe(),
	}
	model.refreshRoster()
	model.syncCursorToSelection()
	model.spinnerLive = model.hasProvisioning()
	return model
}

// Init implements tea.Model. Starts listening for engine events and,
// when the initial roster already has provisioning drones, the spinner
// tick.
func (model Model) Init() tea.Cmd {
	commands := []tea.Cmd{listenForEngineEvent(model.eventChannel)}
	if model.spinnerLive {
		commands = append(commands, model.spinner.Tick)
	}
	return tea.Batch(commands...)
}

// listenForEngineEvent returns a tea.Cmd that blocks until an event
// arrives on the engine channel, then delivers it as an
// engineEventMsg.
func listenForEngineEvent(channel <-chan reconcile.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return nil
		}
		return engineEventMsg{event: event}
	}
}

// Update implements tea.Model. Routes keyboard events based on the
// active input mode and refreshes derived state on engine events.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if model.inputMode != InputNone {
			return model.handleInputKeys(message)
		}
		return model.handleRosterKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.input.Width = message.Width - 12
		model.ensureCursorVisible()

	case engineEventMsg:
		return model.handleEngineEvent(message)

	case spinner.TickMsg:
		if !model.hasProvisioning() {
			model.spinnerLive = false
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command

	case commandResultMsg:
		if message.err != nil {
			model.notice = message.verb + ": " + message.err.Error()
			model.noticeLevel = slog.LevelError
			return model, scheduleNoticeFade()
		}

	case logRecordMsg:
		model.notice = message.Summary
		model.noticeLevel = message.Level
		return model, scheduleNoticeFade()

	case noticeFadeMsg:
		model.notice = ""
	}
	return model, nil
}

// handleEngineEvent refreshes the roster, keeps the cursor glued to
// the engine selection, and re-arms the event listener. The spinner
// tick restarts when a roster change brings provisioning drones back.
func (model Model) handleEngineEvent(message engineEventMsg) (tea.Model, tea.Cmd) {
	model.refreshRoster()
	model.syncCursorToSelection()

	commands := []tea.Cmd{listenForEngineEvent(model.eventChannel)}

	if message.event.Kind == reconcile.EventDeliveryFailed {
		model.notice = fmt.Sprintf("delivery to %s failed", model.droneLabel(message.event.DroneID))
		model.noticeLevel = slog.LevelError
		commands = append(commands, scheduleNoticeFade())
	}

	if model.hasProvisioning() && !model.spinnerLive {
		model.spinnerLive = true
		commands = append(commands, model.spinner.Tick)
	}
	return model, tea.Batch(commands...)
}

// handleRosterKeys processes keyboard input while no input mode is
// active.
func (model Model) handleRosterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		model.setCursor(model.cursor - 1)

	case key.Matches(message, model.keys.Down):
		model.setCursor(model.cursor + 1)

	case key.Matches(message, model.keys.Home):
		model.setCursor(0)

	case key.Matches(message, model.keys.End):
		model.setCursor(len(model.roster) - 1)

	case key.Matches(message, model.keys.NextChat):
		model.cycleChat()

	case key.Matches(message, model.keys.Compose):
		if _, ok := model.currentEntry(); ok {
			model.enterInput(InputPrompt, "")
		}

	case key.Matches(message, model.keys.Create):
		// A rejected fleet name pre-fills the input so the retry is
		// one edit away.
		prefill := ""
		if pending := model.engine.PendingNames(); len(pending) > 0 {
			prefill = pending[0].Name
		}
		model.enterInput(InputCreate, prefill)

	case key.Matches(message, model.keys.Rename):
		if entry, ok := model.currentEntry(); ok {
			model.renameID = entry.ID
			model.enterInput(InputRename, entry.Name)
		}

	case key.Matches(message, model.keys.Delete):
		if entry, ok := model.currentEntry(); ok {
			engine := model.engine
			droneID := entry.ID
			verb := "delete " + entry.Name
			return model, func() tea.Msg {
				return commandResultMsg{verb: verb, err: engine.Delete(context.Background(), droneID)}
			}
		}

	case key.Matches(message, model.keys.Retry):
		if queueKey, prompt, ok := model.failedHead(); ok {
			model.engine.RetryPrompt(queueKey, prompt.ID)
		}

	case key.Matches(message, model.keys.Discard):
		if queueKey, prompt, ok := model.failedHead(); ok {
			model.engine.RemovePrompt(queueKey, prompt.ID)
		}

	case key.Matches(message, model.keys.Dismiss):
		if pending := model.engine.PendingNames(); len(pending) > 0 {
			model.engine.DismissPending(pending[0].Name)
		}

	case key.Matches(message, model.keys.Filter):
		model.enterInput(InputFilter, model.filterQuery)

	case key.Matches(message, model.keys.ClearFilter):
		if model.filterQuery != "" {
			model.setFilter("")
		}
	}
	return model, nil
}

// handleInputKeys processes keyboard input while an input mode is
// active. Escape cancels, enter submits, everything else goes to the
// text input. Filter input applies on every keystroke.
func (model Model) handleInputKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit

	case tea.KeyEscape:
		if model.inputMode == InputFilter {
			model.setFilter("")
		}
		model.exitInput()
		return model, nil

	case tea.KeyEnter:
		return model.submitInput()
	}

	var command tea.Cmd
	model.input, command = model.input.Update(message)
	if model.inputMode == InputFilter {
		model.setFilter(model.input.Value())
	}
	return model, command
}

// submitInput dispatches the confirmed input line for the active mode.
func (model Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(model.input.Value())

	switch model.inputMode {
	case InputPrompt:
		selected, ok := model.engine.Selected()
		if !ok {
			model.exitInput()
			return model, nil
		}
		// Empty text is ignored; the composer stays open so the user
		// can keep the conversation going prompt after prompt.
		if _, queued := model.engine.SendPrompt(selected.DroneID, selected.Chat, value); queued {
			model.input.SetValue("")
		}
		return model, nil

	case InputCreate:
		model.exitInput()
		if value == "" {
			return model, nil
		}
		engine := model.engine
		spec := hangar.CreateSpec{Name: value}
		return model, func() tea.Msg {
			_, err := engine.CreateDrone(context.Background(), spec)
			return commandResultMsg{verb: "create " + spec.Name, err: err}
		}

	case InputRename:
		droneID := model.renameID
		model.exitInput()
		if value == "" || droneID == "" {
			return model, nil
		}
		engine := model.engine
		return model, func() tea.Msg {
			_, err := engine.Rename(context.Background(), droneID, value)
			return commandResultMsg{verb: "rename to " + value, err: err}
		}

	case InputFilter:
		model.setFilter(value)
		model.exitInput()
		return model, nil
	}

	model.exitInput()
	return model, nil
}

// enterInput activates an input mode with the given initial text.
func (model *Model) enterInput(mode InputMode, initial string) {
	model.inputMode = mode
	switch mode {
	case InputPrompt:
		model.input.Prompt = "> "
		model.input.Placeholder = "prompt for " + model.selectionLabel()
	case InputCreate:
		model.input.Prompt = "create: "
		model.input.Placeholder = "drone name"
	case InputRename:
		model.input.Prompt = "rename: "
		model.input.Placeholder = ""
	case InputFilter:
		model.input.Prompt = "/"
		model.input.Placeholder = ""
	}
	model.input.SetValue(initial)
	model.input.CursorEnd()
	model.input.Focus()
}

// exitInput deactivates the input line and clears its buffer.
func (model *Model) exitInput() {
	model.inputMode = InputNone
	model.renameID = ""
	model.input.Blur()
	model.input.SetValue("")
}

// setCursor moves the cursor to the given roster position (clamped)
// and selects the drone there. Selecting re-resolves the chat to the
// drone's first chat; Tab cycles from there.
func (model *Model) setCursor(position int) {
	if len(model.roster) == 0 {
		return
	}
	if position < 0 {
		position = 0
	}
	if position >= len(model.roster) {
		position = len(model.roster) - 1
	}
	model.cursor = position
	model.ensureCursorVisible()

	entry := model.roster[model.cursor]
	chat := ""
	if len(entry.Chats) > 0 {
		chat = entry.Chats[0]
	}
	model.engine.Select(entry.ID, chat)
}

// cycleChat advances the selection to the selected drone's next chat.
func (model *Model) cycleChat() {
	entry, ok := model.currentEntry()
	if !ok || len(entry.Chats) < 2 {
		return
	}
	selected, ok := model.engine.Selected()
	if !ok || selected.DroneID != entry.ID {
		return
	}
	index := slices.Index(entry.Chats, selected.Chat)
	next := entry.Chats[(index+1)%len(entry.Chats)]
	model.engine.Select(entry.ID, next)
}

// setFilter installs a case-insensitive name substring filter on the
// engine, or clears it for an empty query.
func (model *Model) setFilter(query string) {
	model.filterQuery = query
	if query == "" {
		model.engine.SetRosterFilter(nil)
	} else {
		lowered := strings.ToLower(query)
		model.engine.SetRosterFilter(func(entry reconcile.RosterEntry) bool {
			return strings.Contains(strings.ToLower(entry.Name), lowered)
		})
	}
	model.refreshRoster()
	model.syncCursorToSelection()
}

// refreshRoster re-reads the visible roster and clamps the cursor and
// scroll into the new bounds.
func (model *Model) refreshRoster() {
	model.roster = model.engine.Roster()
	if model.cursor >= len(model.roster) {
		model.cursor = len(model.roster) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
	model.ensureCursorVisible()
}

// syncCursorToSelection moves the cursor onto the engine's selected
// drone when it is visible. No-op when the selection is filtered out
// or gone; the cursor stays where it was until the user moves it.
func (model *Model) syncCursorToSelection() {
	selected, ok := model.engine.Selected()
	if !ok {
		return
	}
	for index, entry := range model.roster {
		if entry.ID == selected.DroneID {
			model.cursor = index
			model.ensureCursorVisible()
			return
		}
	}
}

// ensureCursorVisible adjusts scrollOffset so the cursor stays within
// the visible window.
func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}

	maxOffset := len(model.roster) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if model.scrollOffset > maxOffset {
		model.scrollOffset = maxOffset
	}

	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
}

// currentEntry returns the roster entry under the cursor.
func (model Model) currentEntry() (reconcile.RosterEntry, bool) {
	if model.cursor < 0 || model.cursor >= len(model.roster) {
		return reconcile.RosterEntry{}, false
	}
	return model.roster[model.cursor], true
}

// failedHead returns the selected queue's head prompt when it is in
// the failed state, the only state retry and discard act on.
func (model Model) failedHead() (reconcile.QueueKey, reconcile.QueuedPrompt, bool) {
	selected, ok := model.engine.Selected()
	if !ok {
		return reconcile.QueueKey{}, reconcile.QueuedPrompt{}, false
	}
	prompts := model.engine.Prompts(selected)
	if len(prompts) == 0 || prompts[0].State != reconcile.PromptFailed {
		return reconcile.QueueKey{}, reconcile.QueuedPrompt{}, false
	}
	return selected, prompts[0], true
}

// hasProvisioning reports whether any visible drone is still being
// provisioned, which is what keeps the spinner ticking.
func (model Model) hasProvisioning() bool {
	for _, entry := range model.roster {
		if entry.Phase.Provisioning() {
			return true
		}
	}
	return false
}

// droneLabel returns the display name for a drone ID, falling back to
// the ID itself when the drone is no longer visible.
func (model Model) droneLabel(droneID string) string {
	for _, entry := range model.roster {
		if entry.ID == droneID {
			return entry.Name
		}
	}
	return droneID
}

// selectionLabel renders the active selection as "name" or
// "name [chat]" for non-default chats.
func (model Model) selectionLabel() string {
	selected, ok := model.engine.Selected()
	if !ok {
		return ""
	}
	label := model.droneLabel(selected.DroneID)
	if selected.Chat != hangar.DefaultChat {
		label += " [" + selected.Chat + "]"
	}
	return label
}
