// Package layout provides pure functions for UI dimension calculations.
package layout

// Heights of the fixed rows.
const (
	HeaderHeight = 1
	InputHeight  = 3 // border + one line
	NoticeHeight = 1 // transient warning line, when present
)

// MinHistoryHeight is the smallest history panel still worth drawing.
const MinHistoryHeight = 5

// Opts describes what is on screen besides the history panel.
type Opts struct {
	StatusHeight int
	HasNotice    bool
}

// HistoryHeight returns the rows left for the history panel, or 0 when the
// terminal is too short to show it.
func HistoryHeight(windowHeight int, opts Opts) int {
	h := windowHeight - HeaderHeight - InputHeight - opts.StatusHeight
	if opts.HasNotice {
		h -= NoticeHeight
	}
	if h < MinHistoryHeight {
		return 0
	}
	return h
}
