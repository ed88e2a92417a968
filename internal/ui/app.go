// Package ui provides the Bubble Tea TUI for restack.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/restackd/restack/internal/action"
	"github.com/restackd/restack/internal/prefs"
	"github.com/restackd/restack/internal/selection"
	"github.com/restackd/restack/internal/stackd"
	"github.com/restackd/restack/internal/state"
	"github.com/restackd/restack/internal/view"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    stackd.API
	Store     *state.Store
	Prefs     *prefs.Store
	PollTick  time.Duration
	ThemeName string
	PerPage   int
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	client   stackd.API
	store    *state.Store
	prefs    *prefs.Store
	pollTick time.Duration

	// Core state machines
	proj  view.Projector
	sel   *selection.Manager
	coord *action.Coordinator

	// Data state
	snapshot state.Snapshot
	projn    view.Projection

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	cursor   int
	showHelp bool

	// Search input
	searching bool
	search    textinput.Model

	// Redeploy spinner
	spin     spinner.Model
	spinning bool

	// Prompt state (filter-change selection prompt)
	promptOpen     bool
	promptRemember bool

	// Transient footer notice
	notice   string
	noticeAt time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	proj := view.NewProjector(opts.PerPage)

	var prefStore selection.PreferenceStore
	if opts.Prefs != nil {
		prefStore = opts.Prefs
	}

	search := textinput.New()
	search.Placeholder = "name or id"
	search.Prompt = "/"
	search.CharLimit = 64

	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m := Model{
		ctx:      ctx,
		client:   opts.Client,
		store:    opts.Store,
		prefs:    opts.Prefs,
		pollTick: pollTick,
		proj:     proj,
		sel:      selection.NewManager(prefStore, proj.State),
		coord:    action.NewCoordinator(opts.Store, opts.Client),
		theme:    GetTheme(themeName),
		keys:     defaultKeyMap(),
		search:   search,
		spin:     spin,
	}

	if opts.Store != nil {
		m.snapshot = opts.Store.Snapshot()
		m.syncDerived()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.syncDerived()
		return m, m.ensureSpinner()

	case spinner.TickMsg:
		if !m.spinning {
			return m, nil
		}
		if !m.anyRedeploying() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case singleResultMsg:
		if msg.err != nil {
			m.setNotice("redeploy failed: " + msg.id)
		}
		m.snapshot = m.store.Snapshot()
		m.syncDerived()
		return m, nil

	case bulkResultMsg:
		if msg.err != nil {
			m.setNotice("bulk redeploy failed")
		} else {
			for _, id := range msg.plan.Targets {
				m.sel.Remove(id)
			}
			m.setNotice("redeploy requested")
		}
		m.snapshot = m.store.Snapshot()
		m.syncDerived()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.promptOpen {
		return m.renderPrompt()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay: any key closes it
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Selection prompt captures all input while open
	if m.promptOpen {
		return m.handlePromptKey(msg)
	}

	// Search input captures most input while active
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefs != nil {
			m.prefs.SetTheme(m.theme.Name)
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.proj.State.Query != "" {
			m.search.SetValue("")
			m.proj.SetQuery("")
			m.applyFilterChange()
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.CycleStatus):
		m.proj.SetStatus(nextStatusFilter(m.proj.State.Status))
		m.applyFilterChange()
		return m, nil

	case key.Matches(msg, m.keys.RedeployingOnly):
		m.proj.SetRedeployingOnly(!m.proj.State.RedeployingOnly)
		m.applyFilterChange()
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.proj.SetPage(m.projn.Page - 1)
		m.syncDerived()
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		m.proj.SetPage(m.projn.Page + 1)
		m.syncDerived()
		return m, nil

	case key.Matches(msg, m.keys.CyclePerPage):
		m.proj.SetPerPage(nextPerPage(m.proj.State.PerPage))
		if m.prefs != nil {
			m.prefs.SetPerPage(m.proj.State.PerPage)
		}
		m.syncDerived()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSelect):
		if st, ok := m.cursorStack(); ok {
			if !m.sel.Toggle(st) {
				m.setNotice("stack not eligible")
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearSelection):
		m.sel.Clear()
		return m, nil

	case key.Matches(msg, m.keys.ForgetPref):
		m.sel.ClearStoredPreference()
		m.syncDerived()
		return m, nil

	case key.Matches(msg, m.keys.Redeploy):
		return m.triggerSingle()

	case key.Matches(msg, m.keys.RedeployBulk):
		return m.triggerBulk()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.projn.Paged)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		if n := len(m.projn.Paged); n > 0 {
			m.cursor = n - 1
		}
		return m, nil
	}

	return m, nil
}

// handleSearchKey routes input to the search field, applying the query live.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.proj.SetQuery("")
		m.applyFilterChange()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.proj.State.Query {
		m.proj.SetQuery(m.search.Value())
		m.applyFilterChange()
	}
	return m, cmd
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	// Expire the transient notice
	if m.notice != "" && time.Since(m.noticeAt) > 5*time.Second {
		m.notice = ""
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// triggerSingle starts the optimistic redeploy saga for the highlighted stack.
func (m Model) triggerSingle() (tea.Model, tea.Cmd) {
	st, ok := m.cursorStack()
	if !ok {
		return m, nil
	}

	plan, ok := m.coord.BeginSingle(st)
	if !ok {
		m.setNotice("nothing to redeploy")
		return m, nil
	}

	m.sel.Remove(st.ID)
	m.snapshot = m.store.Snapshot()
	m.syncDerived()
	return m, tea.Batch(singleRedeployCmd(m.ctx, m.coord, plan), m.ensureSpinner())
}

// triggerBulk starts the bulk saga: selection if non-empty, else the page.
func (m Model) triggerBulk() (tea.Model, tea.Cmd) {
	selected := m.selectedStacks()
	if !action.CanBulk(selected, m.projn.Paged) {
		m.setNotice("nothing to redeploy")
		return m, nil
	}

	plan := action.PlanBulk(selected, m.projn.Paged, m.projn.EligibleTotal)
	plan = m.coord.BeginBulk(plan)

	m.snapshot = m.store.Snapshot()
	m.syncDerived()
	return m, tea.Batch(bulkRedeployCmd(m.ctx, m.coord, plan), m.ensureSpinner())
}

// applyFilterChange feeds the prompt state machine after a filter mutation
// and recomputes the projection in the same update.
func (m *Model) applyFilterChange() {
	m.sel.FilterChanged(m.proj.State)
	m.syncDerived()
}

// syncDerived reconciles derived state after any collection or filter change:
// prune the selection, re-project (which clamps the page), keep the cursor on
// the same stack when possible, and mirror the prompt visibility.
func (m *Model) syncDerived() {
	var cursorID string
	if st, ok := m.cursorStack(); ok {
		cursorID = st.ID
	}

	m.sel.Prune(view.EligibleIDs(m.snapshot.Stacks))
	m.projn = m.proj.Project(m.snapshot.Stacks)

	m.cursor = findRow(m.projn.Paged, cursorID, m.cursor)

	if m.sel.PromptVisible() {
		if !m.promptOpen {
			m.promptOpen = true
			m.promptRemember = m.sel.PromptRemember()
		}
	} else {
		m.promptOpen = false
	}
}

// findRow locates the row for id, falling back to a clamped previous index.
func findRow(stacks []state.Stack, id string, previous int) int {
	if id != "" {
		for i, st := range stacks {
			if st.ID == id {
				return i
			}
		}
	}
	if previous >= len(stacks) {
		previous = len(stacks) - 1
	}
	if previous < 0 {
		previous = 0
	}
	return previous
}

// cursorStack returns the highlighted stack, if any.
func (m Model) cursorStack() (state.Stack, bool) {
	if m.cursor < 0 || m.cursor >= len(m.projn.Paged) {
		return state.Stack{}, false
	}
	return m.projn.Paged[m.cursor], true
}

// selectedStacks resolves the selection ids against the current collection.
func (m Model) selectedStacks() []state.Stack {
	ids := m.sel.IDs()
	if len(ids) == 0 {
		return nil
	}
	byID := make(map[string]state.Stack, len(m.snapshot.Stacks))
	for _, st := range m.snapshot.Stacks {
		byID[st.ID] = st
	}
	out := make([]state.Stack, 0, len(ids))
	for _, id := range ids {
		if st, ok := byID[id]; ok {
			out = append(out, st)
		}
	}
	return out
}

func (m Model) anyRedeploying() bool {
	for _, st := range m.snapshot.Stacks {
		if st.Redeploying {
			return true
		}
	}
	return false
}

// ensureSpinner starts the spinner tick chain when a redeploy is in flight.
func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinning || !m.anyRedeploying() {
		return nil
	}
	m.spinning = true
	return m.spin.Tick
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeAt = time.Now()
}

func nextStatusFilter(f view.StatusFilter) view.StatusFilter {
	switch f {
	case view.StatusAll:
		return view.StatusOutdated
	case view.StatusOutdated:
		return view.StatusCurrent
	default:
		return view.StatusAll
	}
}

var perPageCycle = []int{10, 25, 50, view.PerPageAll}

func nextPerPage(current int) int {
	for i, v := range perPageCycle {
		if v == current {
			return perPageCycle[(i+1)%len(perPageCycle)]
		}
	}
	return perPageCycle[0]
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	header := m.renderHeader()
	filterBar := m.renderFilterBar()
	table := m.renderTable()
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, filterBar, table, footer)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type singleResultMsg struct {
	id  string
	err error
}

type bulkResultMsg struct {
	plan action.BulkPlan
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func singleRedeployCmd(ctx context.Context, coord *action.Coordinator, plan action.SinglePlan) tea.Cmd {
	return func() tea.Msg {
		return singleResultMsg{id: plan.ID, err: coord.RunSingle(ctx, plan)}
	}
}

func bulkRedeployCmd(ctx context.Context, coord *action.Coordinator, plan action.BulkPlan) tea.Cmd {
	return func() tea.Msg {
		return bulkResultMsg{plan: plan, err: coord.RunBulk(ctx, plan)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
