// Package selection owns the set of stacks marked for bulk redeploy and the
// "keep selection after filter change?" prompt workflow.
package selection

import (
	"github.com/restackd/restack/internal/state"
	"github.com/restackd/restack/internal/view"
)

// Action is the user's answer to the filter-change prompt.
type Action string

const (
	Keep  Action = "keep"
	Clear Action = "clear"
)

// ParseAction normalizes a stored action value.
func ParseAction(value string) Action {
	if Action(value) == Clear {
		return Clear
	}
	return Keep
}

// Preference is the remembered (or session-scoped) prompt answer.
type Preference struct {
	Action   Action
	Remember bool
}

// PreferenceStore persists the prompt preference. Implementations must
// degrade gracefully: failures are logged by the store, never returned.
type PreferenceStore interface {
	LoadSelection() (action string, remember bool, ok bool)
	SaveSelection(action string, remember bool)
	ClearSelection()
}

// Manager tracks the selected stack ids in toggle order, prunes ids that
// stop being eligible, and runs the filter-change prompt state machine.
type Manager struct {
	order   []string
	members map[string]struct{}

	prompt       bool
	lastRemember bool // seeds the prompt's remember checkbox

	remembered    Preference
	hasRemembered bool

	prev  view.State
	prefs PreferenceStore
}

// NewManager builds a Manager, loading any persisted preference. initial is
// the filter state at startup; the prompt only reacts to later transitions.
func NewManager(prefs PreferenceStore, initial view.State) *Manager {
	m := &Manager{
		members: make(map[string]struct{}),
		prev:    initial,
		prefs:   prefs,
	}
	if prefs != nil {
		if action, remember, ok := prefs.LoadSelection(); ok && remember {
			m.remembered = Preference{Action: ParseAction(action), Remember: true}
			m.hasRemembered = true
		}
	}
	return m
}

// IDs returns the selected ids in toggle order.
func (m *Manager) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the selection size.
func (m *Manager) Len() int {
	return len(m.order)
}

// Has reports membership.
func (m *Manager) Has(id string) bool {
	_, ok := m.members[id]
	return ok
}

// Toggle flips membership for an eligible stack. Ineligible stacks are
// refused; returns whether anything changed.
func (m *Manager) Toggle(st state.Stack) bool {
	if !st.Eligible() {
		return false
	}
	if m.Has(st.ID) {
		m.drop(st.ID)
	} else {
		m.members[st.ID] = struct{}{}
		m.order = append(m.order, st.ID)
	}
	return true
}

// Remove unconditionally drops an id. Removal is always safe, so no
// eligibility check is needed.
func (m *Manager) Remove(id string) {
	if m.Has(id) {
		m.drop(id)
	}
	if len(m.order) == 0 {
		m.prompt = false
	}
}

// Clear empties the selection and hides the prompt.
func (m *Manager) Clear() {
	m.order = nil
	m.members = make(map[string]struct{})
	m.prompt = false
}

// Prune drops every id that is no longer eligible. Runs after every
// collection mutation; an emptied selection force-hides the prompt.
func (m *Manager) Prune(eligible map[string]struct{}) {
	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := eligible[id]; ok {
			kept = append(kept, id)
		} else {
			delete(m.members, id)
		}
	}
	m.order = kept
	if len(m.order) == 0 {
		m.prompt = false
	}
}

// FilterChanged feeds the prompt state machine with the current filter state.
// The prompt fires when the filter state transitions while the selection is
// non-empty and the new state has active filters, whether or not the selected
// stacks remain visible. A remembered preference applies silently.
func (m *Manager) FilterChanged(cur view.State) {
	if cur.FilterEquals(m.prev) {
		return
	}
	defer func() { m.prev = cur }()

	if len(m.order) == 0 || !cur.FilterActive() {
		m.prompt = false
		return
	}

	if m.hasRemembered {
		if m.remembered.Action == Clear {
			m.Clear()
		}
		m.prompt = false
		return
	}

	m.prompt = true
}

// PromptVisible reports whether the prompt should be shown.
func (m *Manager) PromptVisible() bool {
	return m.prompt
}

// PromptRemember seeds the prompt's remember checkbox with the last-used
// unremembered choice (default false).
func (m *Manager) PromptRemember() bool {
	return m.lastRemember
}

// ResolvePrompt applies the user's answer. The preference is persisted only
// when remember is set; otherwise any stored preference is cleared.
func (m *Manager) ResolvePrompt(action Action, remember bool) {
	if action == Clear {
		m.Clear()
	}

	m.lastRemember = remember
	if remember {
		m.remembered = Preference{Action: action, Remember: true}
		m.hasRemembered = true
		if m.prefs != nil {
			m.prefs.SaveSelection(string(action), true)
		}
	} else {
		m.hasRemembered = false
		if m.prefs != nil {
			m.prefs.ClearSelection()
		}
	}
	m.prompt = false
}

// ClearStoredPreference erases the persisted preference and, when a
// selection is active under active filters, re-shows the prompt: the user
// asked to be asked again.
func (m *Manager) ClearStoredPreference() {
	if m.prefs != nil {
		m.prefs.ClearSelection()
	}
	m.remembered = Preference{Action: Keep, Remember: false}
	m.hasRemembered = false
	m.lastRemember = false

	if len(m.order) > 0 && m.prev.FilterActive() {
		m.prompt = true
	}
}

// Remembered exposes the in-memory remembered preference, if any.
func (m *Manager) Remembered() (Preference, bool) {
	return m.remembered, m.hasRemembered
}

func (m *Manager) drop(id string) {
	delete(m.members, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
