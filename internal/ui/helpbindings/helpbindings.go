// Package helpbindings provides a scrollable popup listing key bindings.
package helpbindings

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tubeplay/internal/keymap"
	"github.com/llehouerou/tubeplay/internal/ui"
	"github.com/llehouerou/tubeplay/internal/ui/render"
	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// CloseMsg is sent when the popup should close.
type CloseMsg struct{}

// categoryOrder is the display order of binding contexts.
var categoryOrder = []string{"global", "input", "playback", "history"}

var categoryLabels = map[string]string{
	"global":   "Global",
	"input":    "Reference Field",
	"playback": "Playback",
	"history":  "History",
}

// chrome is the number of rows taken by the title, footer and popup border.
const chrome = 10

// Model holds the help popup state.
type Model struct {
	ui.Base
	lines  []string
	offset int
}

// New builds the popup for every binding context.
func New() Model {
	m := Model{}
	m.lines = buildLines()
	return m
}

// Reset scrolls back to the top.
func (m Model) Reset() Model {
	m.offset = 0
	return m
}

// Update scrolls on j/k and closes on ?, f1, esc or q.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "?", "f1", "esc", "q":
		return m, func() tea.Msg { return CloseMsg{} }
	case "j", "down":
		m.offset = min(m.offset+1, m.maxOffset())
	case "k", "up":
		m.offset = max(m.offset-1, 0)
	}
	return m, nil
}

// View renders the popup content (the caller adds the border).
func (m Model) View() string {
	st := styles.T().S()

	end := min(m.offset+m.visibleHeight(), len(m.lines))
	visible := m.lines[min(m.offset, end):end]

	footer := "f1/esc close"
	if m.maxOffset() > 0 {
		footer = "j/k scroll · " + footer
	}

	return st.Title.Render("Help") + "\n\n" +
		strings.Join(visible, "\n") + "\n\n" +
		st.Subtle.Render(footer)
}

func (m Model) visibleHeight() int {
	if m.Height() == 0 {
		return len(m.lines)
	}
	return max(m.Height()-chrome, 3)
}

func (m Model) maxOffset() int {
	return max(len(m.lines)-m.visibleHeight(), 0)
}

func buildLines() []string {
	st := styles.T().S()

	keyWidth := 0
	for _, b := range keymap.All {
		keyWidth = max(keyWidth, len(keyLabel(b)))
	}

	var lines []string
	for _, ctx := range categoryOrder {
		bindings := keymap.ByContext(ctx)
		if len(bindings) == 0 {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines,
			st.Warning.Bold(true).Render(categoryLabels[ctx]),
			st.Subtle.Render(render.Separator(keyWidth+24)),
		)
		for _, b := range bindings {
			lines = append(lines,
				st.Key.Render(render.Pad(keyLabel(b), keyWidth))+"  "+st.Base.Render(b.Description))
		}
	}
	return lines
}

// keyLabel joins a binding's keys, naming the space bar once.
func keyLabel(b keymap.Binding) string {
	keys := make([]string, 0, len(b.Keys))
	for _, k := range b.Keys {
		if k == " " {
			continue
		}
		keys = append(keys, k)
	}
	return strings.Join(keys, ", ")
}
