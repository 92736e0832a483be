// Package playerbar renders the playback status panel: controller state,
// current title, and where the render sink stands.
package playerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tubeplay/internal/icons"
	"github.com/llehouerou/tubeplay/internal/playback"
	"github.com/llehouerou/tubeplay/internal/ui"
	"github.com/llehouerou/tubeplay/internal/ui/render"
	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// contentRows is the number of lines inside the border.
const contentRows = 3

// Height is the total height of the panel including its border.
const Height = contentRows + ui.BorderHeight

// State holds everything needed to render the panel.
type State struct {
	State     playback.State
	Title     string
	Reference string
	Failure   string
	Spinner   string // current spinner frame, shown while pending

	Headless    bool
	SinkWidth   int
	SinkHeight  int
	SinkVisible bool
}

// NewState snapshots the controller. spinner is the frame to show while
// resolving or preparing.
func NewState(svc playback.Service, spinner string) State {
	s := State{
		State:     svc.State(),
		Reference: svc.Reference(),
		Headless:  svc.Headless(),
		Spinner:   spinner,
	}
	if session, ok := svc.Session(); ok {
		s.Title = session.Title()
	}
	if f := svc.Failure(); f != nil {
		s.Failure = f.Message
	}
	view := svc.Sink()
	s.SinkWidth, s.SinkHeight = view.Size()
	s.SinkVisible = view.Visible()
	return s
}

// Render returns the bordered panel at the given total width.
func Render(s State, width int) string {
	innerWidth := max(width, ui.MinPanelWidth) - ui.BorderHeight
	lines := []string{
		headline(s, innerWidth),
		render.Fit(styles.T().S().Muted.Render(render.Truncate(s.Reference, innerWidth)), innerWidth),
		detail(s, innerWidth),
	}
	return styles.PanelStyle(s.State.SinkVisible()).
		Width(innerWidth).
		Render(strings.Join(lines, "\n"))
}

// headline is "<symbol> <State>  <title>" with the sink badge on the right.
func headline(s State, width int) string {
	st := styles.T().S()
	label := stateStyle(s.State).Render(symbol(s.State, s.Spinner) + " " + s.State.String())
	badge := sinkBadge(s)

	title := s.Title
	if title == "" && s.State == playback.StateIdle {
		title = "Nothing playing"
	}
	room := width - lipgloss.Width(label) - lipgloss.Width(badge) - 3
	left := label
	if room > 0 && title != "" {
		left += "  " + st.Title.Render(render.Truncate(title, room))
	}
	return render.Fit(render.Row(left, st.Subtle.Render(badge), width), width)
}

// detail shows the failure message, or the key hints for the state.
func detail(s State, width int) string {
	st := styles.T().S()
	if s.State == playback.StateFailed && s.Failure != "" {
		return render.Fit(st.Error.Render(render.Truncate(s.Failure, width)), width)
	}
	return render.Fit(st.Subtle.Render(hint(s.State)), width)
}

func hint(s playback.State) string {
	switch s {
	case playback.StateResolving:
		return "resolving stream…  s stop"
	case playback.StatePreparing:
		return "preparing stream…  s stop"
	case playback.StatePlaying:
		return "space pause · s stop"
	case playback.StatePaused:
		return "space resume · s stop"
	case playback.StateStopped, playback.StateFailed:
		return "r play again · enter play a new reference"
	case playback.StateIdle:
		return "type a URL or video id and press enter"
	}
	return ""
}

func sinkBadge(s State) string {
	if s.Headless {
		return icons.Current().Audio + " audio only"
	}
	visibility := "hidden"
	if s.SinkVisible {
		visibility = "shown"
	}
	return fmt.Sprintf("%s %dx%d %s", icons.Current().Video, s.SinkWidth, s.SinkHeight, visibility)
}
