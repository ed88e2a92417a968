// Package view derives the ordered, filtered, paginated stack view from the
// canonical collection plus the user's filter and pagination state.
package view

import (
	"strings"

	"github.com/restackd/restack/internal/state"
)

// StatusFilter selects stacks by update status.
type StatusFilter int

const (
	StatusAll StatusFilter = iota
	StatusCurrent
	StatusOutdated
)

// Label returns the display label for the filter.
func (f StatusFilter) Label() string {
	switch f {
	case StatusCurrent:
		return "Current"
	case StatusOutdated:
		return "Outdated"
	default:
		return "All"
	}
}

// PerPageAll disables pagination and shows the whole filtered set.
const PerPageAll = 0

// State holds the user's filter and pagination inputs. The filter fields
// (Status, Query, RedeployingOnly) are what the selection prompt watches;
// pagination is not part of the filter state.
type State struct {
	Status          StatusFilter
	Query           string
	RedeployingOnly bool
	PerPage         int // PerPageAll shows everything
	Page            int
}

// FilterActive reports whether any filter narrows the collection.
func (s State) FilterActive() bool {
	return s.Status != StatusAll || strings.TrimSpace(s.Query) != "" || s.RedeployingOnly
}

// FilterEquals compares only the filter fields of two states.
func (s State) FilterEquals(o State) bool {
	return s.Status == o.Status && s.Query == o.Query && s.RedeployingOnly == o.RedeployingOnly
}

// Projection is the derived view handed to the presentation layer.
type Projection struct {
	Filtered      []state.Stack
	Paged         []state.Stack
	Page          int
	TotalPages    int
	EligibleTotal int // eligible stacks across the whole filtered set
}

// Projector owns filter/pagination state and recomputes the projection.
// Setters that change a filter field reset the page to 1; Project clamps the
// page in the same call, never leaving it dangling past the last page.
type Projector struct {
	State State
}

// NewProjector returns a projector starting on page 1.
func NewProjector(perPage int) Projector {
	if perPage < 0 {
		perPage = PerPageAll
	}
	return Projector{State: State{PerPage: perPage, Page: 1}}
}

// SetStatus updates the status filter.
func (p *Projector) SetStatus(f StatusFilter) {
	if p.State.Status == f {
		return
	}
	p.State.Status = f
	p.State.Page = 1
}

// SetQuery updates the search query.
func (p *Projector) SetQuery(q string) {
	if p.State.Query == q {
		return
	}
	p.State.Query = q
	p.State.Page = 1
}

// SetRedeployingOnly toggles the in-flight-only filter.
func (p *Projector) SetRedeployingOnly(v bool) {
	if p.State.RedeployingOnly == v {
		return
	}
	p.State.RedeployingOnly = v
	p.State.Page = 1
}

// SetPage requests a page; Project clamps it against the filtered set.
func (p *Projector) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	p.State.Page = n
}

// SetPerPage changes the page size. PerPageAll forces page 1.
func (p *Projector) SetPerPage(v int) {
	if v < 0 {
		v = PerPageAll
	}
	p.State.PerPage = v
	if v == PerPageAll {
		p.State.Page = 1
	}
}

// Project filters, clamps, and paginates the collection.
func (p *Projector) Project(stacks []state.Stack) Projection {
	filtered := Filter(stacks, p.State)

	total := TotalPages(len(filtered), p.State.PerPage)
	if p.State.Page > total {
		p.State.Page = total
	}
	if p.State.Page < 1 {
		p.State.Page = 1
	}

	paged := filtered
	if p.State.PerPage != PerPageAll {
		start := (p.State.Page - 1) * p.State.PerPage
		end := min(start+p.State.PerPage, len(filtered))
		if start > len(filtered) {
			start = len(filtered)
		}
		paged = filtered[start:end]
	}

	return Projection{
		Filtered:      filtered,
		Paged:         paged,
		Page:          p.State.Page,
		TotalPages:    total,
		EligibleTotal: len(Eligible(filtered)),
	}
}

// Filter returns the stacks passing every active filter.
func Filter(stacks []state.Stack, s State) []state.Stack {
	query := strings.ToLower(strings.TrimSpace(s.Query))

	out := make([]state.Stack, 0, len(stacks))
	for _, st := range stacks {
		switch s.Status {
		case StatusCurrent:
			if st.UpdateStatus != state.StatusCurrent {
				continue
			}
		case StatusOutdated:
			if st.UpdateStatus == state.StatusCurrent {
				continue
			}
		}
		if s.RedeployingOnly && !st.Redeploying {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(st.Name+st.ID), query) {
			continue
		}
		out = append(out, st)
	}
	return out
}

// Eligible returns the subset of stacks that may be redeployed.
func Eligible(stacks []state.Stack) []state.Stack {
	out := make([]state.Stack, 0, len(stacks))
	for _, st := range stacks {
		if st.Eligible() {
			out = append(out, st)
		}
	}
	return out
}

// EligibleIDs returns the ids of eligible stacks as a set.
func EligibleIDs(stacks []state.Stack) map[string]struct{} {
	out := make(map[string]struct{}, len(stacks))
	for _, st := range stacks {
		if st.Eligible() {
			out[st.ID] = struct{}{}
		}
	}
	return out
}

// TotalPages computes the page count for a filtered size, minimum 1.
func TotalPages(count, perPage int) int {
	if perPage == PerPageAll || count <= 0 {
		return 1
	}
	pages := (count + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}
