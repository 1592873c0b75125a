// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nerfZael/drone-sub001/lib/drone"
	"github.com/nerfZael/drone-sub001/lib/hangar"
	"github.com/nerfZael/drone-sub001/lib/reconcile"
)

func TestViewBeforeFirstWindowSize(t *testing.T) {
	engine := newFakeEngine(readyEntry("d1", "scout"))
	model := NewModel(engine)

	if got := model.View(); got != "Loading..." {
		t.Errorf("view before WindowSizeMsg = %q, want Loading...", got)
	}
}

func TestViewShowsRosterAndChrome(t *testing.T) {
	starting := reconcile.RosterEntry{ID: "d3", Name: "ranger", Phase: drone.PhaseStarting, Chats: []string{"default"}}
	engine := newFakeEngine(readyEntry("d1", "scout"), readyEntry("d2", "builder"), starting)
	model := sizedModel(engine)

	view := model.View()

	if !strings.Contains(view, "DRONE DECK") {
		t.Error("view should contain the header title")
	}
	if !strings.Contains(view, "3 drones") {
		t.Error("view should contain the drone count")
	}
	if !strings.Contains(view, "1 provisioning") {
		t.Error("view should count the provisioning drone")
	}
	for _, name := range []string{"scout", "builder", "ranger"} {
		if !strings.Contains(view, name) {
			t.Errorf("view should contain drone name %q", name)
		}
	}
	if !strings.Contains(view, "ready") {
		t.Error("view should contain the ready phase label")
	}
	if !strings.Contains(view, "starting") {
		t.Error("view should contain the starting phase label")
	}
	if !strings.Contains(view, "▸") {
		t.Error("view should mark the cursor row")
	}
	if !strings.Contains(view, "q quit") {
		t.Error("view should contain the keyboard help")
	}
}

func TestViewShowsBusyAndQueueBadges(t *testing.T) {
	entry := readyEntry("d1", "scout")
	entry.Busy = true
	entry.QueueDepth = 2
	entry.FailedDelivery = true
	engine := newFakeEngine(entry)
	model := sizedModel(engine)

	view := model.View()

	if !strings.Contains(view, " busy") {
		t.Error("view should mark the busy drone")
	}
	if !strings.Contains(view, "·2") {
		t.Error("view should show the queue depth badge")
	}
	if !strings.Contains(view, "!") {
		t.Error("view should show the failed delivery badge")
	}
	if !strings.Contains(view, "2 queued") {
		t.Error("header should count queued prompts")
	}
	if !strings.Contains(view, "1 failed") {
		t.Error("header should count failed deliveries")
	}
}

func TestViewEmptyState(t *testing.T) {
	engine := newFakeEngine()
	model := sizedModel(engine)

	view := model.View()
	if !strings.Contains(view, "No drones. Press c to create one.") {
		t.Error("empty view should invite creating a drone")
	}
}

func TestViewFilteredEmptyState(t *testing.T) {
	engine := newFakeEngine(readyEntry("d1", "scout"))
	model := sizedModel(engine)

	model, _ = press(t, model, "/")
	model = typeText(t, model, "zzz")

	view := model.View()
	if !strings.Contains(view, "No drones match /zzz.") {
		t.Error("filtered empty view should name the query")
	}
	if !strings.Contains(view, "/zzz") {
		t.Error("header should show the active filter")
	}
}

func TestViewStatusShowsFailedDelivery(t *testing.T) {
	engine := newFakeEngine(readyEntry("d1", "scout"))
	key := reconcile.QueueKey{DroneID: "d1", Chat: hangar.DefaultChat}
	engine.prompts[key] = []reconcile.QueuedPrompt{
		{ID: "p1", Text: "first", State: reconcile.PromptFailed, Error: "agent crashed"},
	}
	model := sizedModel(engine)

	view := model.View()
	if !strings.Contains(view, "agent crashed") {
		t.Error("status line should quote the delivery error")
	}
	if !strings.Contains(view, "R retry") {
		t.Error("status line should hint the retry key")
	}
}

func TestViewStatusShowsRejectedName(t *testing.T) {
	engine := newFakeEngine(readyEntry("d1", "scout"))
	engine.pending = []hangar.RejectedSpec{{Name: "gamma", Error: "duplicate-name: a drone named \"gamma\" already exists"}}
	model := sizedModel(engine)

	view := model.View()
	if !strings.Contains(view, `rejected "gamma"`) {
		t.Error("status line should name the rejected spec")
	}
	if !strings.Contains(view, "X dismiss") {
		t.Error("status line should hint the dismiss key")
	}
}

func TestViewStatusShowsLastAcknowledgement(t *testing.T) {
	engine := newFakeEngine(readyEntry("d1", "scout"))
	engine.recent = []reconcile.SentPrompt{
		{PromptID: "11111111-aaaa", Text: "older", SentAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)},
		{PromptID: "deadbeef-bbbb", Text: "newer", SentAt: time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)},
	}
	model := sizedModel(engine)

	view := model.View()
	if !strings.Contains(view, "sent deadbeef at 09:30:00") {
		t.Errorf("status line should show the newest acknowledgement, got:\n%s", view)
	}
}

func TestViewComposerFooter(t *testing.T) {
	engine := newFakeEngine(readyEntry("d1", "scout"))
	model := sizedModel(engine)

	model, _ = press(t, model, "enter")
	view := model.View()
	if !strings.Contains(view, "prompt for scout") {
		t.Error("composer footer should name the selection in its placeholder")
	}
	if strings.Contains(view, "q quit") {
		t.Error("keyboard help should be hidden while composing")
	}
}

func TestViewScrollPosition(t *testing.T) {
	var entries []reconcile.RosterEntry
	for _, name := range []string{
		"d01", "d02", "d03", "d04", "d05", "d06", "d07", "d08", "d09", "d10",
		"d11", "d12", "d13", "d14", "d15",
	} {
		entries = append(entries, readyEntry(name, "drone-"+name))
	}
	engine := newFakeEngine(entries...)

	model := NewModel(engine)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	model = updated.(Model)

	view := model.View()
	if !strings.Contains(view, "[top] 1/15") {
		t.Errorf("footer should report the top position, got:\n%s", view)
	}

	model, _ = press(t, model, "G")
	view = model.View()
	if !strings.Contains(view, "[bottom] 15/15") {
		t.Errorf("footer should report the bottom position, got:\n%s", view)
	}
}
