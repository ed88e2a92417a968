package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Filters and paging
	Search          key.Binding
	CycleStatus     key.Binding
	RedeployingOnly key.Binding
	PrevPage        key.Binding
	NextPage        key.Binding
	CyclePerPage    key.Binding

	// Selection and actions
	ToggleSelect   key.Binding
	ClearSelection key.Binding
	ForgetPref     key.Binding
	Redeploy       key.Binding
	RedeployBulk   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle status filter"),
		),
		RedeployingOnly: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "redeploying only"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "next page"),
		),
		CyclePerPage: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "page size"),
		),

		ToggleSelect: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle select"),
		),
		ClearSelection: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear selection"),
		),
		ForgetPref: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "forget prompt choice"),
		),
		Redeploy: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "redeploy stack"),
		),
		RedeployBulk: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "redeploy selection/page"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleSelect, k.Redeploy, k.RedeployBulk, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PrevPage, k.NextPage},
		{k.Search, k.CycleStatus, k.RedeployingOnly, k.CyclePerPage},
		{k.ToggleSelect, k.ClearSelection, k.Redeploy, k.RedeployBulk, k.ForgetPref},
		{k.CycleTheme, k.Help, k.Escape, k.Quit},
	}
}
