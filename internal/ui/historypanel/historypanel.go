// Package historypanel renders the list of previously played references.
package historypanel

import (
	"time"

	"github.com/llehouerou/tubeplay/internal/state"
	"github.com/llehouerou/tubeplay/internal/ui"
	"github.com/llehouerou/tubeplay/internal/ui/cursor"
)

// Model is the history list. Entries are loaded by the app; the panel only
// tracks selection and renders.
type Model struct {
	ui.Base
	entries []state.HistoryEntry
	cursor  cursor.Cursor
	now     func() time.Time
}

// New creates an empty history panel.
func New() Model {
	return Model{
		cursor: cursor.New(ui.ScrollMargin),
		now:    time.Now,
	}
}

// SetClock replaces the clock used for relative timestamps.
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

// SetEntries replaces the list, keeping the selection in range.
func (m *Model) SetEntries(entries []state.HistoryEntry) {
	m.entries = entries
	m.cursor.Clamp(len(m.entries), m.listHeight())
}

// Entries returns the displayed entries.
func (m Model) Entries() []state.HistoryEntry {
	return m.entries
}

// Len returns the number of entries.
func (m Model) Len() int {
	return len(m.entries)
}

// Selected returns the entry under the cursor.
func (m Model) Selected() (state.HistoryEntry, bool) {
	if len(m.entries) == 0 {
		return state.HistoryEntry{}, false
	}
	return m.entries[m.cursor.Pos()], true
}

// Move shifts the selection by delta rows.
func (m *Model) Move(delta int) {
	m.cursor.Move(delta, len(m.entries), m.listHeight())
}

// JumpStart selects the most recent entry.
func (m *Model) JumpStart() {
	m.cursor.JumpStart()
}

// JumpEnd selects the oldest entry.
func (m *Model) JumpEnd() {
	m.cursor.JumpEnd(len(m.entries), m.listHeight())
}

// SetSize sets the panel dimensions and re-clamps the scroll window.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.cursor.Clamp(len(m.entries), m.listHeight())
}

func (m Model) listHeight() int {
	return max(m.Height()-ui.PanelOverhead, 0)
}
