package historypanel

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/tubeplay/internal/icons"
	"github.com/llehouerou/tubeplay/internal/state"
	"github.com/llehouerou/tubeplay/internal/ui/render"
	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// View renders the panel.
func (m Model) View() string {
	if m.Width() == 0 || m.Height() == 0 {
		return ""
	}

	innerWidth := m.InnerWidth()
	listHeight := m.listHeight()
	st := styles.T().S()

	header := render.Fit(st.Title.Render(fmt.Sprintf("History (%d)", len(m.entries))), innerWidth)
	lines := make([]string, 0, listHeight+2)
	lines = append(lines, header, render.Separator(innerWidth))

	start, end := m.cursor.VisibleRange(len(m.entries), listHeight)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderEntry(m.entries[i], i == m.cursor.Pos(), innerWidth))
	}
	if len(m.entries) == 0 && listHeight > 0 {
		lines = append(lines, render.Fit(st.Subtle.Render("Nothing played yet"), innerWidth))
	}
	for len(lines) < listHeight+2 {
		lines = append(lines, render.Pad("", innerWidth))
	}

	return styles.PanelStyle(m.IsFocused()).
		Width(innerWidth).
		Render(strings.Join(lines, "\n"))
}

// renderEntry draws "<mark> <title>" with "<plays> · <when>" on the right.
func (m Model) renderEntry(e state.HistoryEntry, selected bool, width int) string {
	st := styles.T().S()

	ic := icons.Current()
	mark := st.Success.Render(ic.Played)
	if e.LastOutcome == state.OutcomeFailed {
		mark = st.Error.Render(ic.Broken)
	}

	title := e.Title
	if title == "" {
		title = e.Reference
	}

	meta := humanize.RelTime(e.LastPlayedAt, m.now(), "ago", "from now")
	if e.PlayCount > 1 {
		meta = fmt.Sprintf("%d plays · %s", e.PlayCount, meta)
	}

	room := max(width-len(meta)-4, 1)
	left := mark + " " + render.Truncate(title, room)
	line := render.Fit(render.Row(left, st.Muted.Render(meta), width), width)

	if selected && m.IsFocused() {
		return st.Cursor.Render(line)
	}
	return line
}
