package playerbar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/tubeplay/internal/icons"
	"github.com/llehouerou/tubeplay/internal/playback"
)

func TestRender_Dimensions(t *testing.T) {
	states := []playback.State{
		playback.StateIdle, playback.StateResolving, playback.StatePreparing,
		playback.StatePlaying, playback.StatePaused, playback.StateStopped,
		playback.StateFailed,
	}
	for _, st := range states {
		t.Run(st.String(), func(t *testing.T) {
			out := Render(State{
				State:      st,
				Title:      strings.Repeat("very long title ", 10),
				Reference:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				Failure:    "Failed to resolve: video unavailable",
				SinkWidth:  1280,
				SinkHeight: 720,
			}, 60)

			lines := strings.Split(out, "\n")
			if len(lines) != Height {
				t.Errorf("height = %d, want %d", len(lines), Height)
			}
			for i, line := range lines {
				if w := lipgloss.Width(line); w != 60 {
					t.Errorf("line %d width = %d, want 60", i, w)
				}
			}
		})
	}
}

func TestRender_ShowsTitleAndState(t *testing.T) {
	out := ansi.Strip(Render(State{
		State:       playback.StatePlaying,
		Title:       "Big Buck Bunny",
		Reference:   "bbb",
		SinkWidth:   1280,
		SinkHeight:  720,
		SinkVisible: true,
	}, 80))

	for _, want := range []string{"Playing", "Big Buck Bunny", "bbb", "1280x720 shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_FailureMessage(t *testing.T) {
	out := ansi.Strip(Render(State{
		State:     playback.StateFailed,
		Reference: "bad",
		Failure:   "Failed to resolve: private video",
	}, 80))

	if !strings.Contains(out, "private video") {
		t.Errorf("failure message not shown:\n%s", out)
	}
}

func TestRender_Headless(t *testing.T) {
	out := ansi.Strip(Render(State{State: playback.StateIdle, Headless: true}, 80))

	if !strings.Contains(out, "audio only") {
		t.Errorf("headless badge not shown:\n%s", out)
	}
	if !strings.Contains(out, "Nothing playing") {
		t.Errorf("idle placeholder not shown:\n%s", out)
	}
}

func TestSymbol_SpinnerWhilePending(t *testing.T) {
	if got := symbol(playback.StateResolving, "⣾"); got != "⣾" {
		t.Errorf("symbol = %q, want spinner frame", got)
	}
	if got := symbol(playback.StatePreparing, ""); got != icons.Current().Pending {
		t.Errorf("symbol = %q, want %q", got, icons.Current().Pending)
	}
	if got := symbol(playback.StatePlaying, "⣾"); got != icons.Current().Play {
		t.Errorf("symbol = %q, want %q", got, icons.Current().Play)
	}
}
