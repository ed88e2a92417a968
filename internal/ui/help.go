package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpItem struct {
	key  string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
				{"[ / ]", "Previous/next page"},
				{"s", "Cycle page size (10/25/50/all)"},
			},
		},
		{
			title: "Filters",
			items: []helpItem{
				{"f", "Cycle status filter (all/outdated/current)"},
				{"a", "Toggle redeploying-only"},
				{"/", "Search name or id"},
				{"esc", "Clear search"},
			},
		},
		{
			title: "Selection & redeploy",
			items: []helpItem{
				{"space", "Toggle selection"},
				{"C", "Clear selection"},
				{"r", "Redeploy highlighted stack"},
				{"R", "Redeploy selection (or page)"},
				{"u", "Forget remembered prompt choice"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, section := range sections {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString("  ")
			b.WriteString(styles.InfoText.Render(padRight(item.key, 10)))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Press any key to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Background(lipgloss.Color(m.theme.Surface)).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
