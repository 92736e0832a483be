package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tubeplay/internal/state"
)

// WatchServiceEvents returns a command that waits for the next playback
// event and converts it to a tea.Msg. Each handler re-arms it.
func (m Model) WatchServiceEvents() tea.Cmd {
	sub := m.playbackSub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return ServiceStateChangedMsg{
				Previous:  e.Previous,
				Current:   e.Current,
				Reference: e.Reference,
			}
		case e := <-sub.Ready:
			return ServiceReadyMsg{Session: e.Session}
		case e := <-sub.Error:
			return ServiceErrorMsg{Reference: e.Reference, Failure: e.Failure}
		case e := <-sub.Warning:
			return ServiceWarningMsg{Message: e.Message}
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}

func (m Model) loadHistoryCmd() tea.Cmd {
	store := m.StateMgr
	return func() tea.Msg {
		entries, err := store.ListHistory(historyLimit)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

// recordHistoryCmd stores the outcome of a play request and reloads the
// list.
func (m Model) recordHistoryCmd(reference, title string, outcome state.Outcome) tea.Cmd {
	store := m.StateMgr
	at := m.now()
	return func() tea.Msg {
		if err := store.RecordHistory(reference, title, outcome, at); err != nil {
			return HistoryLoadedMsg{Err: err}
		}
		entries, err := store.ListHistory(historyLimit)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

func (m Model) deleteHistoryCmd(reference string) tea.Cmd {
	store := m.StateMgr
	return func() tea.Msg {
		if err := store.DeleteHistory(reference); err != nil {
			return HistoryLoadedMsg{Err: err}
		}
		entries, err := store.ListHistory(historyLimit)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}
