// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nerfZael/drone-sub001/lib/drone"
	"github.com/nerfZael/drone-sub001/lib/reconcile"
)

// Fixed column widths for the roster table. The name column fills the
// remaining space.
const (
	columnWidthMarker = 2 // Cursor marker ("▸ ").
	columnWidthGlyph  = 2 // Phase glyph + space.
	columnWidthPhase  = 8 // Longest phase label ("starting").
	columnWidthBusy   = 5 // " busy" marker.
	columnWidthBadges = 6 // Right-aligned queue badges ("·12 !").
)

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	sections := []string{
		model.renderHeader(),
		model.renderRoster(),
		lipgloss.NewStyle().
			Foreground(model.theme.BorderColor).
			Render(strings.Repeat("─", model.width)),
		model.renderStatusLine(),
		model.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

// visibleHeight returns the number of roster rows that fit between the
// chrome lines: header, separator, status line, and footer.
func (model Model) visibleHeight() int {
	return model.height - 4
}

// renderHeader renders the top chrome line: title on the left, fleet
// counts and the active filter on the right, joined by a rule.
func (model Model) renderHeader() string {
	separatorStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	statsStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	sep := separatorStyle.Render("─")

	title := "DRONE DECK"
	left := sep + sep + sep + " " + titleStyle.Render(title) + " "
	leftWidth := 3 + 1 + lipgloss.Width(title) + 1

	var provisioning, queued, failed int
	for _, entry := range model.roster {
		if entry.Phase.Provisioning() {
			provisioning++
		}
		queued += entry.QueueDepth
		if entry.FailedDelivery {
			failed++
		}
	}

	statsText := fmt.Sprintf("%d drones", len(model.roster))
	if provisioning > 0 {
		statsText += fmt.Sprintf("  %d provisioning", provisioning)
	}
	if queued > 0 {
		statsText += fmt.Sprintf("  %d queued", queued)
	}
	if failed > 0 {
		statsText += fmt.Sprintf("  %d failed", failed)
	}
	if model.filterQuery != "" {
		statsText += "  /" + model.filterQuery
	}

	rightPortion := " " + statsStyle.Render(statsText) + " " + sep
	rightWidth := 1 + lipgloss.Width(statsText) + 1 + 1

	fillCount := model.width - leftWidth - rightWidth
	if fillCount < 1 {
		fillCount = 1
	}
	fill := strings.Repeat("─", fillCount)

	return left + separatorStyle.Render(fill) + rightPortion
}

// renderRoster renders the drone rows with a scrollbar column on the
// right edge.
func (model Model) renderRoster() string {
	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}

	if len(model.roster) == 0 {
		return model.renderEmpty(visible)
	}

	rowWidth := model.width - 1

	var rows []string
	for index := model.scrollOffset; index < model.scrollOffset+visible && index < len(model.roster); index++ {
		rows = append(rows, model.renderRow(model.roster[index], index == model.cursor, rowWidth))
	}

	emptyStyle := lipgloss.NewStyle().Width(rowWidth)
	for len(rows) < visible {
		rows = append(rows, emptyStyle.Render(""))
	}

	scrollbar := model.renderScrollbar(visible)

	contentStyle := lipgloss.NewStyle().Width(rowWidth).Height(visible)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		contentStyle.Render(strings.Join(rows, "\n")),
		scrollbar,
	)
}

// renderEmpty renders the empty state when no drones are visible.
func (model Model) renderEmpty(visible int) string {
	text := "No drones. Press c to create one."
	if model.filterQuery != "" {
		text = fmt.Sprintf("No drones match /%s.", model.filterQuery)
	}

	messageStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	lines := make([]string, visible)
	if visible > 0 {
		lines[visible/2] = "  " + messageStyle.Render(text)
	}
	return lipgloss.NewStyle().
		Width(model.width).
		Height(visible).
		Render(strings.Join(lines, "\n"))
}

// renderRow renders one roster row:
//
//	▸ ⠋ builder           starting        ·2
//	  ● scout             ready     busy
//	  ✗ lab-rat           error            !
//
// Placeholder entries (created but not yet in a registry snapshot)
// render their name faint; the phase column already shows starting.
func (model Model) renderRow(entry reconcile.RosterEntry, selected bool, rowWidth int) string {
	nameWidth := rowWidth - columnWidthMarker - columnWidthGlyph - columnWidthPhase - columnWidthBusy - columnWidthBadges - 2
	if nameWidth < 8 {
		nameWidth = 8
	}

	marker := "  "
	if selected {
		marker = "▸ "
	}

	glyph := model.phaseGlyph(entry.Phase)
	name := padRight(ansi.Truncate(entry.Name, nameWidth, "…"), nameWidth)
	phase := padRight(string(entry.Phase), columnWidthPhase)

	busy := strings.Repeat(" ", columnWidthBusy)
	if entry.Busy {
		busy = " busy"
	}

	badges := ""
	if entry.QueueDepth > 0 {
		badges = fmt.Sprintf("·%d", entry.QueueDepth)
	}
	if entry.FailedDelivery {
		badges += " !"
	}
	badgesPadding := strings.Repeat(" ", max(0, columnWidthBadges-lipgloss.Width(badges)))

	if selected {
		plain := marker + glyph + " " + name + " " + phase + busy + badgesPadding + badges
		return lipgloss.NewStyle().
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground).
			Width(rowWidth).
			MaxWidth(rowWidth).
			Render(plain)
	}

	phaseStyle := lipgloss.NewStyle().Foreground(model.theme.PhaseColor(entry.Phase))
	nameStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if entry.Placeholder {
		nameStyle = lipgloss.NewStyle().Foreground(model.theme.FaintText)
	}

	row := marker +
		phaseStyle.Render(glyph) + " " +
		nameStyle.Render(name) + " " +
		phaseStyle.Render(phase)
	if entry.Busy {
		row += lipgloss.NewStyle().Foreground(model.theme.BusyColor).Render(busy)
	} else {
		row += busy
	}
	row += badgesPadding + model.renderBadges(entry)
	return row
}

// phaseGlyph returns the single-cell indicator for a phase. Drones
// still provisioning get the live spinner frame.
func (model Model) phaseGlyph(phase drone.Phase) string {
	switch {
	case phase.Provisioning():
		return model.spinner.View()
	case phase == drone.PhaseReady:
		return "●"
	case phase == drone.PhaseError:
		return "✗"
	default:
		return "·"
	}
}

// renderBadges renders the styled queue badges for a row.
func (model Model) renderBadges(entry reconcile.RosterEntry) string {
	badges := ""
	if entry.QueueDepth > 0 {
		badges = lipgloss.NewStyle().
			Foreground(model.theme.QueueBadge).
			Render(fmt.Sprintf("·%d", entry.QueueDepth))
	}
	if entry.FailedDelivery {
		badges += " " + lipgloss.NewStyle().
			Foreground(model.theme.FailedBadge).
			Bold(true).
			Render("!")
	}
	return badges
}

// renderScrollbar produces the single-column scrollbar for the roster.
// The thumb indicates the visible region within the full roster; when
// everything fits it spans the whole track.
func (model Model) renderScrollbar(height int) string {
	if height <= 0 {
		return ""
	}

	trackStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(model.theme.Accent)

	lines := make([]string, height)

	total := len(model.roster)
	if total <= height {
		for index := range lines {
			lines[index] = thumbStyle.Render("┃")
		}
		return strings.Join(lines, "\n")
	}

	thumbSize := height * height / total
	if thumbSize < 1 {
		thumbSize = 1
	}
	trackRange := height - thumbSize
	scrollableRange := total - height
	thumbOffset := 0
	if scrollableRange > 0 && trackRange > 0 {
		thumbOffset = model.scrollOffset * trackRange / scrollableRange
	}
	if thumbOffset+thumbSize > height {
		thumbOffset = height - thumbSize
	}

	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}

// renderStatusLine renders the line between the separator and the
// footer. Priority order: a failed delivery on the selected queue
// (actionable), then a rejected fleet name (actionable), then the
// latest delivery acknowledgement for the active conversation.
func (model Model) renderStatusLine() string {
	if queueKey, prompt, ok := model.failedHead(); ok {
		style := lipgloss.NewStyle().Foreground(model.theme.NoticeError)
		text := fmt.Sprintf("✗ %s [%s]: %s", model.droneLabel(queueKey.DroneID), queueKey.Chat, prompt.Error)
		hint := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  R retry · x discard")
		return " " + style.Render(ansi.Truncate(text, model.width-28, "…")) + hint
	}

	if pending := model.engine.PendingNames(); len(pending) > 0 {
		style := lipgloss.NewStyle().Foreground(model.theme.NoticeWarn)
		text := fmt.Sprintf("rejected %q: %s", pending[0].Name, pending[0].Error)
		hint := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  c retry · X dismiss")
		return " " + style.Render(ansi.Truncate(text, model.width-28, "…")) + hint
	}

	recent := model.engine.RecentlySent()
	if len(recent) > 0 {
		last := recent[len(recent)-1]
		okStyle := lipgloss.NewStyle().Foreground(model.theme.NoticeOK)
		faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		return " " + okStyle.Render("✓") + faint.Render(fmt.Sprintf(
			" sent %s at %s", shortID(last.PromptID), last.SentAt.Format("15:04:05")))
	}

	return ""
}

// renderFooter renders the bottom line: the active input, or the
// keyboard help with any transient notice appended.
func (model Model) renderFooter() string {
	if model.inputMode != InputNone {
		return " " + model.input.View()
	}

	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	help := " j/k move  Tab chat  Enter prompt  c create  r rename  D delete  / filter  q quit"

	if len(model.roster) > model.visibleHeight() && model.visibleHeight() > 0 {
		position := "top"
		if model.scrollOffset+model.visibleHeight() >= len(model.roster) {
			position = "bottom"
		} else if model.scrollOffset > 0 {
			percent := float64(model.scrollOffset) / float64(len(model.roster)-model.visibleHeight()) * 100
			position = fmt.Sprintf("%d%%", int(percent))
		}
		help += fmt.Sprintf("  [%s] %d/%d", position, model.cursor+1, len(model.roster))
	}

	if model.notice != "" {
		noticeColor := model.theme.FaintText
		switch {
		case model.noticeLevel >= slog.LevelError:
			noticeColor = model.theme.NoticeError
		case model.noticeLevel >= slog.LevelWarn:
			noticeColor = model.theme.NoticeWarn
		}
		noticeStyle := lipgloss.NewStyle().Foreground(noticeColor).Bold(true)
		help += "  " + noticeStyle.Render(model.notice)
	}

	return style.Render(help)
}

// padRight pads text with spaces to the given display width.
func padRight(text string, width int) string {
	gap := width - lipgloss.Width(text)
	if gap > 0 {
		text += strings.Repeat(" ", gap)
	}
	return text
}

// shortID returns the first 8 characters of an identifier, enough to
// quote a hangar prompt ID without flooding the status line.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
