package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tubeplay/internal/playback"
	"github.com/llehouerou/tubeplay/internal/state"
)

// ServiceStateChangedMsg is sent when the controller changes state.
type ServiceStateChangedMsg struct {
	Previous  playback.State
	Current   playback.State
	Reference string
}

// ServiceReadyMsg is sent when a session starts playing.
type ServiceReadyMsg struct {
	Session playback.Session
}

// ServiceErrorMsg is sent when the controller enters Failed.
type ServiceErrorMsg struct {
	Reference string
	Failure   playback.Failure
}

// ServiceWarningMsg carries a non-fatal controller warning.
type ServiceWarningMsg struct {
	Message string
}

// ServiceClosedMsg is sent when the controller subscription ends.
type ServiceClosedMsg struct{}

// HistoryLoadedMsg carries a fresh copy of the history list.
type HistoryLoadedMsg struct {
	Entries []state.HistoryEntry
	Err     error
}

// NoticeLevel sets how a notice is styled.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is a one-line transient message under the input field.
type Notice struct {
	ID      int
	Level   NoticeLevel
	Message string
}

// NoticeClearMsg clears the notice with the matching ID.
type NoticeClearMsg struct {
	ID int
}

// NoticeDuration is how long a notice stays on screen.
const NoticeDuration = 4 * time.Second

// NoticeClearCmd clears notice id after NoticeDuration.
func NoticeClearCmd(id int) tea.Cmd {
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return NoticeClearMsg{ID: id}
	})
}
