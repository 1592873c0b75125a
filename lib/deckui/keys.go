// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the deck TUI.
type KeyMap struct {
	// Roster navigation.
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// NextChat cycles the selection through the selected drone's
	// chats.
	NextChat key.Binding

	// Compose opens the prompt input for the active selection.
	Compose key.Binding

	// Fleet commands.
	Create key.Binding // Open the name input for a new drone.
	Rename key.Binding // Open the rename input for the selected drone.
	Delete key.Binding // Delete the selected drone.

	// Failed delivery handling (act on the selected queue's head).
	Retry   key.Binding
	Discard key.Binding

	// Dismiss clears the oldest rejected-name notice.
	Dismiss key.Binding

	// Filter.
	Filter      key.Binding // Enter filter mode.
	ClearFilter key.Binding // Clear the roster filter.

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	NextChat: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next chat"),
	),
	Compose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "prompt"),
	),
	Create: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "create"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete"),
	),
	Retry: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "retry send"),
	),
	Discard: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "discard failed"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "dismiss rejection"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	ClearFilter: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
