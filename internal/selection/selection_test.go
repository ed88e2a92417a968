package selection

import (
	"testing"

	"github.com/restackd/restack/internal/state"
	"github.com/restackd/restack/internal/view"
)

// fakePrefs records persistence calls in memory.
type fakePrefs struct {
	action   string
	remember bool
	stored   bool
	saves    int
	clears   int
}

func (f *fakePrefs) LoadSelection() (string, bool, bool) {
	return f.action, f.remember, f.stored
}

func (f *fakePrefs) SaveSelection(action string, remember bool) {
	f.action, f.remember, f.stored = action, remember, true
	f.saves++
}

func (f *fakePrefs) ClearSelection() {
	f.action, f.remember, f.stored = "", false, false
	f.clears++
}

func eligibleStack(id string) state.Stack {
	return state.Stack{ID: id, Name: id, UpdateStatus: state.StatusStale}
}

func eligibleSet(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestManager_ToggleKeepsOrder(t *testing.T) {
	m := NewManager(nil, view.State{})

	for _, id := range []string{"b", "a", "c"} {
		if !m.Toggle(eligibleStack(id)) {
			t.Fatalf("Toggle(%s) refused an eligible stack", id)
		}
	}

	got := m.IDs()
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs() = %v, want toggle order %v", got, want)
		}
	}

	// Toggling again removes from the middle without disturbing order.
	m.Toggle(eligibleStack("a"))
	got = m.IDs()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("IDs() after untoggle = %v, want [b c]", got)
	}
}

func TestManager_ToggleRefusesIneligible(t *testing.T) {
	m := NewManager(nil, view.State{})

	tests := []struct {
		name  string
		stack state.Stack
	}{
		{"current", state.Stack{ID: "1", UpdateStatus: state.StatusCurrent}},
		{"disabled", state.Stack{ID: "2", UpdateStatus: state.StatusStale, RedeployDisabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m.Toggle(tt.stack) {
				t.Fatal("Toggle accepted an ineligible stack")
			}
			if m.Has(tt.stack.ID) {
				t.Fatal("ineligible stack entered the selection")
			}
		})
	}
}

func TestManager_RemoveIsUnconditional(t *testing.T) {
	m := NewManager(nil, view.State{})
	m.Toggle(eligibleStack("1"))
	m.Toggle(eligibleStack("2"))

	// Removal needs no eligibility check and tolerates unknown ids.
	m.Remove("1")
	m.Remove("missing")
	if m.Has("1") || !m.Has("2") {
		t.Fatalf("IDs() = %v, want only 2", m.IDs())
	}
}

func TestManager_PruneDropsIneligible(t *testing.T) {
	m := NewManager(nil, view.State{})
	m.Toggle(eligibleStack("1"))
	m.Toggle(eligibleStack("2"))
	m.Toggle(eligibleStack("3"))

	m.Prune(eligibleSet("1", "3"))

	got := m.IDs()
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("IDs() after prune = %v, want [1 3]", got)
	}
}

func TestManager_PruneToEmptyHidesPrompt(t *testing.T) {
	m := NewManager(nil, view.State{})
	m.Toggle(eligibleStack("1"))
	m.FilterChanged(view.State{Query: "x"})
	if !m.PromptVisible() {
		t.Fatal("prompt should fire on filter activation with a selection")
	}

	m.Prune(eligibleSet())
	if m.PromptVisible() {
		t.Fatal("prompt must hide when pruning empties the selection")
	}
	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", m.Len())
	}
}

func TestManager_FilterChangedPromptRules(t *testing.T) {
	tests := []struct {
		name       string
		selected   bool
		next       view.State
		wantPrompt bool
	}{
		{"activation with selection", true, view.State{Status: view.StatusOutdated}, true},
		{"activation without selection", false, view.State{Status: view.StatusOutdated}, false},
		{"query activation", true, view.State{Query: "web"}, true},
		{"redeploying-only activation", true, view.State{RedeployingOnly: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil, view.State{})
			if tt.selected {
				m.Toggle(eligibleStack("1"))
			}
			m.FilterChanged(tt.next)
			if got := m.PromptVisible(); got != tt.wantPrompt {
				t.Errorf("PromptVisible() = %v, want %v", got, tt.wantPrompt)
			}
		})
	}
}

func TestManager_FilterChangedIgnoresNoop(t *testing.T) {
	m := NewManager(nil, view.State{Query: "web"})
	m.Toggle(eligibleStack("1"))

	// Same filter state again: no transition, no prompt. Page and per-page
	// changes are not filter transitions either.
	m.FilterChanged(view.State{Query: "web"})
	if m.PromptVisible() {
		t.Fatal("unchanged filters must not prompt")
	}
	m.FilterChanged(view.State{Query: "web", Page: 3, PerPage: 50})
	if m.PromptVisible() {
		t.Fatal("paging changes must not prompt")
	}
}

func TestManager_FilterChangedToInactiveHidesPrompt(t *testing.T) {
	m := NewManager(nil, view.State{})
	m.Toggle(eligibleStack("1"))
	m.FilterChanged(view.State{Query: "x"})
	if !m.PromptVisible() {
		t.Fatal("prompt should be visible")
	}

	// Clearing all filters resolves the question implicitly.
	m.FilterChanged(view.State{})
	if m.PromptVisible() {
		t.Fatal("prompt must hide when filters deactivate")
	}
	if m.Len() != 1 {
		t.Fatal("implicit dismissal must keep the selection")
	}
}

func TestManager_ResolvePromptKeep(t *testing.T) {
	prefs := &fakePrefs{}
	m := NewManager(prefs, view.State{})
	m.Toggle(eligibleStack("1"))
	m.FilterChanged(view.State{Query: "x"})

	m.ResolvePrompt(Keep, false)

	if m.PromptVisible() {
		t.Fatal("prompt should close after resolution")
	}
	if m.Len() != 1 {
		t.Fatal("keep must preserve the selection")
	}
	if prefs.saves != 0 || prefs.clears != 1 {
		t.Fatalf("unremembered answer: saves=%d clears=%d, want 0/1", prefs.saves, prefs.clears)
	}
	if _, ok := m.Remembered(); ok {
		t.Fatal("unremembered answer must not stick")
	}
}

func TestManager_ResolvePromptClearRemembered(t *testing.T) {
	prefs := &fakePrefs{}
	m := NewManager(prefs, view.State{})
	m.Toggle(eligibleStack("1"))
	m.FilterChanged(view.State{Query: "x"})

	m.ResolvePrompt(Clear, true)

	if m.Len() != 0 {
		t.Fatal("clear must empty the selection")
	}
	if prefs.action != "clear" || !prefs.remember || prefs.saves != 1 {
		t.Fatalf("preference not persisted: %+v", prefs)
	}
	pref, ok := m.Remembered()
	if !ok || pref.Action != Clear {
		t.Fatalf("Remembered() = %+v, %v; want clear", pref, ok)
	}

	// Next filter transition applies the remembered choice silently.
	m.Toggle(eligibleStack("2"))
	m.FilterChanged(view.State{Query: "xy"})
	if m.PromptVisible() {
		t.Fatal("remembered preference must suppress the prompt")
	}
	if m.Len() != 0 {
		t.Fatal("remembered clear must auto-clear the selection")
	}
}

func TestManager_RememberedKeepAppliesSilently(t *testing.T) {
	prefs := &fakePrefs{action: "keep", remember: true, stored: true}
	m := NewManager(prefs, view.State{})
	m.Toggle(eligibleStack("1"))

	m.FilterChanged(view.State{Query: "x"})
	if m.PromptVisible() {
		t.Fatal("remembered keep must suppress the prompt")
	}
	if m.Len() != 1 {
		t.Fatal("remembered keep must preserve the selection")
	}
}

func TestManager_StoredUnrememberedPreferenceIsIgnored(t *testing.T) {
	// A stored record with remember=false must not apply silently.
	prefs := &fakePrefs{action: "clear", remember: false, stored: true}
	m := NewManager(prefs, view.State{})
	m.Toggle(eligibleStack("1"))

	m.FilterChanged(view.State{Query: "x"})
	if !m.PromptVisible() {
		t.Fatal("unremembered stored record must still prompt")
	}
}

func TestManager_ClearStoredPreference(t *testing.T) {
	prefs := &fakePrefs{action: "clear", remember: true, stored: true}
	m := NewManager(prefs, view.State{})
	m.Toggle(eligibleStack("1"))

	// Remembered clear applies silently on the first transition.
	m.FilterChanged(view.State{Query: "x"})
	if m.Len() != 0 {
		t.Fatal("remembered clear should have emptied the selection")
	}

	m.Toggle(eligibleStack("2"))
	m.ClearStoredPreference()

	if prefs.stored {
		t.Fatal("stored preference should be erased")
	}
	if _, ok := m.Remembered(); ok {
		t.Fatal("in-memory preference should be erased")
	}
	// Selection active under active filters: ask again now.
	if !m.PromptVisible() {
		t.Fatal("forgetting the preference should re-show the prompt")
	}
}

func TestManager_ClearStoredPreferenceIdleFilters(t *testing.T) {
	prefs := &fakePrefs{}
	m := NewManager(prefs, view.State{})
	m.Toggle(eligibleStack("1"))

	m.ClearStoredPreference()
	if m.PromptVisible() {
		t.Fatal("no active filters: nothing to ask about")
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"keep", Keep},
		{"clear", Clear},
		{"", Keep},
		{"bogus", Keep},
	}

	for _, tt := range tests {
		if got := ParseAction(tt.in); got != tt.want {
			t.Errorf("ParseAction(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
