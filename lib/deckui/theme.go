// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nerfZael/drone-sub001/lib/drone"
)

// Theme defines the color palette for the deck TUI. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Drone lifecycle phase colors.
	PhaseStarting lipgloss.Color
	PhaseSeeding  lipgloss.Color
	PhaseReady    lipgloss.Color
	PhaseError    lipgloss.Color

	// Busy marker on drones whose agent is mid-turn.
	BusyColor lipgloss.Color

	// Queue badges: waiting prompt count and failed-delivery marker.
	QueueBadge  lipgloss.Color
	FailedBadge lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Accent marks the active element: scrollbar thumb, provisioning
	// spinner, input prompt.
	Accent lipgloss.Color

	// Status bar notices.
	NoticeOK    lipgloss.Color
	NoticeWarn  lipgloss.Color
	NoticeError lipgloss.Color
}

// PhaseColor returns the color for a drone lifecycle phase. Phases
// this build does not know (a newer hangar's vocabulary) render as
// FaintText.
func (theme Theme) PhaseColor(phase drone.Phase) lipgloss.Color {
	switch phase {
	case drone.PhaseStarting:
		return theme.PhaseStarting
	case drone.PhaseSeeding:
		return theme.PhaseSeeding
	case drone.PhaseReady:
		return theme.PhaseReady
	case drone.PhaseError:
		return theme.PhaseError
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background (the common case for
// development environments and tmux sessions).
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	PhaseStarting: lipgloss.Color("220"), // amber
	PhaseSeeding:  lipgloss.Color("141"), // light purple
	PhaseReady:    lipgloss.Color("114"), // green
	PhaseError:    lipgloss.Color("196"), // red

	BusyColor: lipgloss.Color("208"), // orange

	QueueBadge:  lipgloss.Color("75"),  // blue
	FailedBadge: lipgloss.Color("196"), // red

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Accent: lipgloss.Color("220"), // amber

	NoticeOK:    lipgloss.Color("114"),
	NoticeWarn:  lipgloss.Color("220"),
	NoticeError: lipgloss.Color("196"),
}
