package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/restackd/restack/internal/selection"
)

// handlePromptKey processes input while the filter-change prompt is open.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "k", "esc":
		m.sel.ResolvePrompt(selection.Keep, m.promptRemember)
		m.syncDerived()
		return m, nil
	case "c":
		m.sel.ResolvePrompt(selection.Clear, m.promptRemember)
		m.syncDerived()
		return m, nil
	case "m":
		m.promptRemember = !m.promptRemember
		return m, nil
	}
	return m, nil
}

// renderPrompt renders the centered selection prompt modal.
func (m Model) renderPrompt() string {
	styles := m.theme.Styles()

	remember := "[ ]"
	if m.promptRemember {
		remember = "[x]"
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Filters changed"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(fmt.Sprintf(
		"%d stacks are still selected for redeploy.", m.sel.Len())))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Keep the selection or clear it?"))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("enter/k") + styles.Text.Render(" keep    "))
	b.WriteString(styles.DangerText.Render("c") + styles.Text.Render(" clear    "))
	b.WriteString(styles.AccentText.Render("m") + styles.Text.Render(" remember "+remember))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Background(lipgloss.Color(m.theme.Surface)).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
