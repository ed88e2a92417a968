package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/restackd/restack/internal/state"
)

// renderTable renders the paginated stack list, filling the content area.
func (m Model) renderTable() string {
	contentHeight := m.height - 3 // header + filter bar + footer
	if contentHeight < 1 {
		contentHeight = 1
	}

	if len(m.projn.Paged) == 0 {
		styles := m.theme.Styles()
		empty := "No stacks"
		if len(m.snapshot.Stacks) > 0 {
			empty = "No stacks match the current filters"
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(empty))
	}

	lines := make([]string, 0, contentHeight)
	for i, st := range m.projn.Paged {
		if i >= contentHeight {
			break
		}
		lines = append(lines, m.renderRow(st, i == m.cursor))
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// renderRow formats one stack row:
//
//	[x] ⚠ name (id) · Redeploying
func (m Model) renderRow(st state.Stack, highlighted bool) string {
	bgColor := m.theme.Background
	if highlighted {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	mark := "[ ]"
	if m.sel.Has(st.ID) {
		mark = "[x]"
	}
	if st.RedeployDisabled {
		mark = " - "
	}

	name := st.Name
	if st.DuplicateName {
		// Duplicate display names: disambiguate with the id
		name = fmt.Sprintf("%s (%s)", st.Name, st.ID)
	}

	stateLabel, stateKey := stackStateLabel(st)
	if st.Redeploying {
		stateLabel = m.spin.View() + " " + stateLabel
	}

	nameWidth := max(m.width-lipgloss.Width(mark)-2-len(stateLabel)-8, 12)

	var markStyle, nameStyle, sepStyle, stateStyle lipgloss.Style
	if highlighted {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		markStyle, nameStyle, sepStyle, stateStyle = selText, selText, selText, selText
	} else {
		markStyle = styles.AccentText
		nameStyle = styles.Text
		if !st.Eligible() {
			nameStyle = styles.FaintText
		}
		sepStyle = styles.FaintText
		stateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.StatusColor(stateKey)))
	}

	row := bg.Render(mark, markStyle) +
		bg.Space() +
		bg.Render(statusIcon(st.UpdateStatus), stateStyle) +
		bg.Space() +
		bg.Render(padRight(name, nameWidth), nameStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(stateLabel, stateStyle)

	return bg.FillLine(row, m.width)
}

// stackStateLabel returns the display label and theme color key for a stack.
func stackStateLabel(st state.Stack) (label, key string) {
	switch {
	case st.Redeploying:
		return "Redeploying", "redeploying"
	case st.RedeployDisabled:
		return "Disabled", "disabled"
	case st.UpdateStatus == state.StatusCurrent:
		return "Current", "current"
	case st.UpdateStatus == state.StatusStale:
		return "Outdated", "stale"
	default:
		return "Unknown", "unknown"
	}
}

func statusIcon(status state.UpdateStatus) string {
	switch status {
	case state.StatusCurrent:
		return "✔"
	case state.StatusStale:
		return "⚠"
	default:
		return "•"
	}
}
