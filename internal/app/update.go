package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tubeplay/internal/errmsg"
	"github.com/llehouerou/tubeplay/internal/logging"
	"github.com/llehouerou/tubeplay/internal/state"
	"github.com/llehouerou/tubeplay/internal/ui/helpbindings"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ServiceStateChangedMsg:
		return m.handleServiceStateChanged(msg)

	case ServiceReadyMsg:
		s := msg.Session
		return m, tea.Batch(
			m.WatchServiceEvents(),
			m.recordHistoryCmd(s.Stream.Reference, s.Stream.Title, state.OutcomePlayed),
		)

	case ServiceErrorMsg:
		return m, tea.Batch(
			m.WatchServiceEvents(),
			m.recordHistoryCmd(msg.Reference, "", state.OutcomeFailed),
		)

	case ServiceWarningMsg:
		cmd := m.notify(NoticeWarning, msg.Message)
		return m, tea.Batch(m.WatchServiceEvents(), cmd)

	case ServiceClosedMsg:
		return m, nil

	case HistoryLoadedMsg:
		if msg.Err != nil {
			m.logger.Error().Err(msg.Err).Msg("history")
			return m, m.notify(NoticeError, errmsg.Format(errmsg.OpHistoryLoad, msg.Err))
		}
		m.History.SetEntries(msg.Entries)
		return m, nil

	case spinner.TickMsg:
		if !m.Playback.State().IsPending() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case helpbindings.CloseMsg:
		m.ShowHelp = false
		return m, nil

	case NoticeClearMsg:
		if m.Notice != nil && m.Notice.ID == msg.ID {
			m.Notice = nil
			m.resize()
		}
		return m, nil
	}

	// Cursor blink and other component messages.
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// handleServiceStateChanged starts the spinner while a request is pending.
func (m Model) handleServiceStateChanged(msg ServiceStateChangedMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug().
		Stringer(logging.FieldOldState, msg.Previous).
		Stringer(logging.FieldNewState, msg.Current).
		Msg("ui state")

	cmds := []tea.Cmd{m.WatchServiceEvents()}
	if msg.Current.IsPending() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.Spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// notify shows a transient notice and schedules its removal.
func (m *Model) notify(level NoticeLevel, message string) tea.Cmd {
	m.noticeSeq++
	m.Notice = &Notice{ID: m.noticeSeq, Level: level, Message: message}
	m.resize()
	return NoticeClearCmd(m.noticeSeq)
}
