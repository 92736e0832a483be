// Package headerbar renders the single-line title bar.
package headerbar

import (
	"github.com/llehouerou/tubeplay/internal/ui/render"
	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// Height is the fixed height of the header bar.
const Height = 1

const title = "tubeplay"

// Pane names the focusable area shown as active in the header.
type Pane string

const (
	PaneInput   Pane = "input"
	PaneHistory Pane = "history"
)

var tabs = []struct {
	pane Pane
	name string
}{
	{PaneInput, "Reference"},
	{PaneHistory, "History"},
}

// Render returns the header for the given width with focused highlighted.
func Render(focused Pane, width int) string {
	st := styles.T().S()

	left := styles.Banner(title)
	for _, t := range tabs {
		name := st.Muted.Render(t.name)
		if t.pane == focused {
			name = st.Key.Render(t.name)
		}
		left += st.Subtle.Render(" │ ") + name
	}

	right := st.Subtle.Render("tab focus · f1 help")
	return render.Fit(render.Row(left, right, width), width)
}
