package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tubeplay/internal/ui"
	"github.com/llehouerou/tubeplay/internal/ui/headerbar"
	"github.com/llehouerou/tubeplay/internal/ui/layout"
	"github.com/llehouerou/tubeplay/internal/ui/playerbar"
	"github.com/llehouerou/tubeplay/internal/ui/popup"
	"github.com/llehouerou/tubeplay/internal/ui/render"
	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// resize recomputes component sizes after a window or layout change.
func (m *Model) resize() {
	innerWidth := max(m.Width, ui.MinPanelWidth) - ui.BorderHeight
	m.Input.Width = max(innerWidth-lipgloss.Width(m.Input.Prompt)-1, 1)
	m.History.SetSize(m.Width, m.historyHeight())
	m.Help.SetSize(m.Width, m.Height)
}

func (m Model) historyHeight() int {
	return layout.HistoryHeight(m.Height, layout.Opts{
		StatusHeight: playerbar.Height,
		HasNotice:    m.Notice != nil,
	})
}

// View renders the application UI.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}

	sections := []string{
		headerbar.Render(m.Focus, m.Width),
		m.renderInput(),
	}
	if m.Notice != nil {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections, playerbar.Render(playerbar.NewState(m.Playback, m.Spinner.View()), m.Width))
	if m.historyHeight() > 0 {
		sections = append(sections, m.History.View())
	}

	view := strings.Join(sections, "\n")
	if m.ShowHelp {
		view = popup.Overlay(view, popup.Bordered(m.Help.View(), m.Width-4), m.Width, m.Height)
	}
	return enforceHeight(view, m.Height)
}

func (m Model) renderInput() string {
	innerWidth := max(m.Width, ui.MinPanelWidth) - ui.BorderHeight
	return styles.PanelStyle(m.Focus == headerbar.PaneInput).
		Width(innerWidth).
		Render(render.Fit(m.Input.View(), innerWidth))
}

func (m Model) renderNotice() string {
	st := styles.T().S()
	style := st.Muted
	switch m.Notice.Level {
	case NoticeWarning:
		style = st.Warning
	case NoticeError:
		style = st.Error
	case NoticeInfo:
	}
	return render.Fit(" "+style.Render(render.Truncate(m.Notice.Message, m.Width-1)), m.Width)
}

// enforceHeight pads or cuts the view to exactly height lines.
func enforceHeight(view string, height int) string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
