package view

import (
	"fmt"
	"testing"

	"github.com/restackd/restack/internal/state"
)

func stacks(n int) []state.Stack {
	out := make([]state.Stack, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, state.Stack{
			ID:           fmt.Sprintf("id-%02d", i),
			Name:         fmt.Sprintf("stack-%02d", i),
			UpdateStatus: state.StatusStale,
		})
	}
	return out
}

func TestFilter_Status(t *testing.T) {
	input := []state.Stack{
		{ID: "1", Name: "a", UpdateStatus: state.StatusCurrent},
		{ID: "2", Name: "b", UpdateStatus: state.StatusStale},
		{ID: "3", Name: "c", UpdateStatus: state.StatusUnknown},
	}

	tests := []struct {
		name   string
		status StatusFilter
		want   []string
	}{
		{"all", StatusAll, []string{"1", "2", "3"}},
		{"current", StatusCurrent, []string{"1"}},
		{"outdated includes unknown", StatusOutdated, []string{"2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(input, State{Status: tt.status})
			if len(got) != len(tt.want) {
				t.Fatalf("filtered %d stacks, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("filtered[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilter_SearchMatchesNameAndID(t *testing.T) {
	input := []state.Stack{
		{ID: "abc123", Name: "Web Frontend", UpdateStatus: state.StatusStale},
		{ID: "def456", Name: "database", UpdateStatus: state.StatusStale},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"web", 1},     // case-insensitive name match
		{"FRONT", 1},   // case-insensitive
		{"def", 1},     // id match
		{"123", 1},     // id match
		{"base", 1},    // substring
		{"nomatch", 0},
		{"", 2},   // empty query passes everything
		{"  ", 2}, // whitespace-only query is inactive
	}

	for _, tt := range tests {
		got := Filter(input, State{Query: tt.query})
		if len(got) != tt.want {
			t.Errorf("Filter(query=%q) = %d stacks, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestFilter_RedeployingOnly(t *testing.T) {
	input := []state.Stack{
		{ID: "1", Name: "a", UpdateStatus: state.StatusStale, Redeploying: true},
		{ID: "2", Name: "b", UpdateStatus: state.StatusStale},
	}

	got := Filter(input, State{RedeployingOnly: true})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("redeploying-only filter = %#v, want only id 1", got)
	}
}

func TestEligible(t *testing.T) {
	input := []state.Stack{
		{ID: "1", UpdateStatus: state.StatusStale},
		{ID: "2", UpdateStatus: state.StatusCurrent},
		{ID: "3", UpdateStatus: state.StatusStale, RedeployDisabled: true},
		{ID: "4", UpdateStatus: state.StatusUnknown},
	}

	got := Eligible(input)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Fatalf("Eligible = %#v, want ids 1 and 4", got)
	}

	ids := EligibleIDs(input)
	if len(ids) != 2 {
		t.Fatalf("EligibleIDs = %v, want 2 entries", ids)
	}
	if _, ok := ids["2"]; ok {
		t.Fatal("current stack must not be eligible")
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, perPage, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, PerPageAll, 1},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.count, tt.perPage); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.count, tt.perPage, got, tt.want)
		}
	}
}

func TestProjector_Paginates(t *testing.T) {
	p := NewProjector(10)
	p.SetPage(3)

	projn := p.Project(stacks(25))
	if projn.Page != 3 || projn.TotalPages != 3 {
		t.Fatalf("page = %d/%d, want 3/3", projn.Page, projn.TotalPages)
	}
	if len(projn.Paged) != 5 {
		t.Fatalf("page 3 holds %d stacks, want 5", len(projn.Paged))
	}
	if projn.Paged[0].ID != "id-20" {
		t.Fatalf("page 3 starts at %s, want id-20", projn.Paged[0].ID)
	}
}

func TestProjector_ClampsPageWhenFilteredShrinks(t *testing.T) {
	p := NewProjector(10)
	p.SetPage(3)

	if projn := p.Project(stacks(25)); projn.Page != 3 {
		t.Fatalf("page = %d, want 3", projn.Page)
	}

	// Collection shrinks under the current page: clamp in the same call.
	projn := p.Project(stacks(12))
	if projn.Page != 2 || p.State.Page != 2 {
		t.Fatalf("page = %d (state %d), want clamped to 2", projn.Page, p.State.Page)
	}

	projn = p.Project(nil)
	if projn.Page != 1 || projn.TotalPages != 1 {
		t.Fatalf("empty set: page = %d/%d, want 1/1", projn.Page, projn.TotalPages)
	}
}

func TestProjector_FilterChangeResetsPage(t *testing.T) {
	p := NewProjector(10)
	p.SetPage(2)
	p.Project(stacks(25))

	p.SetQuery("stack")
	if p.State.Page != 1 {
		t.Fatalf("query change: page = %d, want 1", p.State.Page)
	}

	p.SetPage(2)
	p.SetStatus(StatusOutdated)
	if p.State.Page != 1 {
		t.Fatalf("status change: page = %d, want 1", p.State.Page)
	}

	p.SetPage(2)
	p.SetRedeployingOnly(true)
	if p.State.Page != 1 {
		t.Fatalf("redeploying-only change: page = %d, want 1", p.State.Page)
	}

	// Setting the same value again must not reset the page.
	p.SetPage(2)
	p.SetRedeployingOnly(true)
	if p.State.Page != 2 {
		t.Fatalf("no-op change: page = %d, want 2", p.State.Page)
	}
}

func TestProjector_PerPageAllForcesPageOne(t *testing.T) {
	p := NewProjector(10)
	p.SetPage(3)
	p.Project(stacks(25))

	p.SetPerPage(PerPageAll)
	projn := p.Project(stacks(25))
	if projn.Page != 1 || len(projn.Paged) != 25 {
		t.Fatalf("ALL: page = %d with %d stacks, want 1 with 25", projn.Page, len(projn.Paged))
	}
}

func TestState_FilterActive(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"inactive", State{}, false},
		{"status", State{Status: StatusOutdated}, true},
		{"query", State{Query: "x"}, true},
		{"whitespace query", State{Query: "  "}, false},
		{"redeploying only", State{RedeployingOnly: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.FilterActive(); got != tt.want {
				t.Errorf("FilterActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjection_EligibleTotalSpansWholeFilteredSet(t *testing.T) {
	input := stacks(25)
	input[0].UpdateStatus = state.StatusCurrent // one ineligible

	p := NewProjector(10)
	projn := p.Project(input)
	if projn.EligibleTotal != 24 {
		t.Fatalf("EligibleTotal = %d, want 24", projn.EligibleTotal)
	}
	if len(projn.Paged) != 10 {
		t.Fatalf("page holds %d, want 10", len(projn.Paged))
	}
}
