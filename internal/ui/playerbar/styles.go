package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tubeplay/internal/icons"
	"github.com/llehouerou/tubeplay/internal/playback"
	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// stateStyle picks the style used for the state label.
func stateStyle(s playback.State) lipgloss.Style {
	st := styles.T().S()
	switch s {
	case playback.StatePlaying:
		return st.Success
	case playback.StateResolving, playback.StatePreparing:
		return st.Pending
	case playback.StatePaused:
		return st.Warning
	case playback.StateFailed:
		return st.Error
	case playback.StateIdle, playback.StateStopped:
		return st.Muted
	}
	return st.Base
}

// symbol returns the glyph shown before the state label. Pending states
// use the caller's spinner frame when one is provided.
func symbol(s playback.State, spinner string) string {
	ic := icons.Current()
	switch s {
	case playback.StatePlaying:
		return ic.Play
	case playback.StatePaused:
		return ic.Pause
	case playback.StateStopped:
		return ic.Stop
	case playback.StateFailed:
		return ic.Failed
	case playback.StateResolving, playback.StatePreparing:
		if spinner != "" {
			return spinner
		}
		return ic.Pending
	case playback.StateIdle:
		return ic.Idle
	}
	return ic.Idle
}
