package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tubeplay/internal/app/handler"
	"github.com/llehouerou/tubeplay/internal/errmsg"
	"github.com/llehouerou/tubeplay/internal/keymap"
	"github.com/llehouerou/tubeplay/internal/logging"
	"github.com/llehouerou/tubeplay/internal/playback"
)

// emptyInputMessage is shown when enter is pressed on a blank field.
const emptyInputMessage = "Enter a URL or video id to play"

// handleInputKeys handles enter and esc in the reference field.
func (m *Model) handleInputKeys(key string) handler.Result {
	switch m.resolve(key) { //nolint:exhaustive // only handling input actions
	case keymap.ActionSubmit:
		return handler.Handled(m.submit())
	case keymap.ActionClearInput:
		m.Input.Reset()
		m.saveInput()
		return handler.HandledNoCmd
	}
	return handler.NotHandled
}

// submit plays the typed reference. A blank field is rejected here with a
// warning and never reaches the controller.
func (m *Model) submit() tea.Cmd {
	ref := strings.TrimSpace(m.Input.Value())
	if ref == "" {
		return m.notify(NoticeWarning, emptyInputMessage)
	}
	return m.play(ref)
}

// handlePlaybackKeys handles space, s and r.
func (m *Model) handlePlaybackKeys(key string) handler.Result {
	switch m.resolve(key) { //nolint:exhaustive // only handling playback actions
	case keymap.ActionPlayPause:
		return handler.Handled(m.togglePlayPause())
	case keymap.ActionStop:
		m.Playback.Stop()
		return handler.HandledNoCmd
	case keymap.ActionRetry:
		return handler.Handled(m.retry())
	}
	return handler.NotHandled
}

// togglePlayPause pauses, resumes, or replays the last reference when
// nothing is loaded. Pending requests are left alone.
func (m *Model) togglePlayPause() tea.Cmd {
	switch s := m.Playback.State(); {
	case s == playback.StatePlaying:
		m.Playback.Pause()
	case s == playback.StatePaused:
		m.Playback.Resume()
	case s.IsPending():
	default:
		return m.retry()
	}
	return nil
}

// retry plays the controller's last reference again.
func (m *Model) retry() tea.Cmd {
	ref := m.Playback.Reference()
	if ref == "" {
		return m.notify(NoticeInfo, "Nothing to play yet")
	}
	return m.play(ref)
}

func (m *Model) play(ref string) tea.Cmd {
	m.logger.Info().Str(logging.FieldReference, ref).Msg("play requested")
	if err := m.Playback.Play(ref); err != nil {
		return m.notify(NoticeError, errmsg.FormatWith(errmsg.OpStart, ref, err))
	}
	return nil
}
