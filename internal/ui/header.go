package ui

import (
	"fmt"
	"time"

	"github.com/restackd/restack/internal/state"
	"github.com/restackd/restack/internal/view"
)

// renderHeader renders the top status line: logo, connection state, counts,
// and the fetch-error banner when the last poll failed.
func (m Model) renderHeader() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles()

	parts := []string{
		bg.Render("restack", styles.Logo),
		bg.Spaces(2),
	}

	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("OFFLINE", styles.DangerText))
	} else {
		parts = append(parts, bg.Render("online", styles.SuccessText))
	}

	outdated, redeploying := 0, 0
	for _, st := range m.snapshot.Stacks {
		if st.UpdateStatus != state.StatusCurrent {
			outdated++
		}
		if st.Redeploying {
			redeploying++
		}
	}
	counts := fmt.Sprintf("%d stacks · %d outdated · %d redeploying",
		len(m.snapshot.Stacks), outdated, redeploying)
	parts = append(parts, bg.Spaces(2), bg.Render(counts, styles.MutedText))

	if !m.snapshot.LastUpdated.IsZero() {
		age := humanizeDuration(time.Since(m.snapshot.LastUpdated))
		parts = append(parts, bg.Spaces(2), bg.Render("updated "+age, styles.FaintText))
	}

	if m.snapshot.LastError != nil {
		banner := truncate("fetch failed: "+m.snapshot.LastError.Error(), max(m.width/2, 20))
		parts = append(parts, bg.Spaces(2), bg.Render(banner, styles.WarningText))
	}

	line := ""
	for _, p := range parts {
		line += p
	}
	return bg.FillLine(line, m.width)
}

// renderFilterBar renders the second line: active filters, search, paging.
func (m Model) renderFilterBar() string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	styles := m.theme.Styles()

	filter := "Filter: " + m.proj.State.Status.Label()
	if m.proj.State.RedeployingOnly {
		filter += " +redeploying"
	}

	var search string
	if m.searching {
		search = m.search.View()
	} else if q := m.proj.State.Query; q != "" {
		search = "/" + q
	}

	perPage := "all"
	if m.proj.State.PerPage != view.PerPageAll {
		perPage = fmt.Sprintf("%d", m.proj.State.PerPage)
	}
	paging := fmt.Sprintf("page %d/%d · %d shown · %s per page",
		m.projn.Page, m.projn.TotalPages, len(m.projn.Filtered), perPage)

	line := bg.Render(filter, styles.Text)
	if search != "" {
		line += bg.Spaces(2) + bg.Render(search, styles.AccentText)
	}
	line += bg.Spaces(2) + bg.Render(paging, styles.MutedText)

	return bg.FillLine(line, m.width)
}

// renderFooter renders the selection summary, transient notice, and key hints.
func (m Model) renderFooter() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles()

	var line string
	if n := m.sel.Len(); n > 0 {
		line += bg.Render(fmt.Sprintf("%d selected", n), styles.AccentText)
		if chips := m.renderSelectionChips(); chips != "" {
			line += bg.Space() + chips
		}
		line += bg.Spaces(2)
	}

	if m.notice != "" {
		line += bg.Render(m.notice, styles.WarningText) + bg.Spaces(2)
	}

	hints := "space select · r redeploy · R bulk · / search · h help"
	line += bg.Render(hints, styles.FaintText)

	return bg.FillLine(line, m.width)
}

// renderSelectionChips renders the first few selected names as chips.
func (m Model) renderSelectionChips() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles()

	const maxChips = 3
	stacks := m.selectedStacks()

	var parts []string
	for i, st := range stacks {
		if i >= maxChips {
			parts = append(parts, bg.Render(fmt.Sprintf("+%d", len(stacks)-maxChips), styles.MutedText))
			break
		}
		parts = append(parts, bg.Render("["+truncate(st.Name, 16)+"]", styles.InfoText))
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += bg.Space()
		}
		out += p
	}
	return out
}
