package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tubeplay/internal/app/handler"
	"github.com/llehouerou/tubeplay/internal/keymap"
	"github.com/llehouerou/tubeplay/internal/state"
	"github.com/llehouerou/tubeplay/internal/ui/headerbar"
)

// contexts returns the keymap contexts for the focused pane, most
// specific first. Playback keys are only live outside the input field,
// where letters and space are typed text.
func (m Model) contexts() []string {
	if m.Focus == headerbar.PaneHistory {
		return []string{"history", "playback", "global"}
	}
	return []string{"input", "global"}
}

// resolve maps a key to an action for the focused pane.
func (m Model) resolve(key string) keymap.Action {
	return m.Keys.Resolve(key, m.contexts()...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowHelp {
		var cmd tea.Cmd
		m.Help, cmd = m.Help.Update(msg)
		return m, cmd
	}

	key := msg.String()
	if handled, cmd := handler.Chain(key,
		m.handleGlobalKeys,
		m.handlePlaybackKeys,
		m.handleHistoryKeys,
		m.handleInputKeys,
	); handled {
		return m, cmd
	}

	if m.Focus != headerbar.PaneInput {
		return m, nil
	}
	return m.updateInput(msg)
}

// updateInput forwards a key to the text field and persists the value
// when it changed.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.Input.Value()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	if m.Input.Value() != before {
		m.saveInput()
	}
	return m, cmd
}

func (m *Model) saveInput() {
	m.StateMgr.SaveInput(state.InputState{Reference: m.Input.Value()})
}

// handleGlobalKeys handles quit, focus switching and help.
func (m *Model) handleGlobalKeys(key string) handler.Result {
	switch m.resolve(key) { //nolint:exhaustive // only handling global actions
	case keymap.ActionQuit:
		return handler.Handled(tea.Quit)
	case keymap.ActionSwitchFocus:
		return handler.Handled(m.switchFocus())
	case keymap.ActionHelp:
		m.ShowHelp = true
		m.Help = m.Help.Reset()
		m.resize()
		return handler.HandledNoCmd
	}
	return handler.NotHandled
}

func (m *Model) switchFocus() tea.Cmd {
	if m.Focus == headerbar.PaneInput {
		m.Focus = headerbar.PaneHistory
		m.Input.Blur()
		m.History.SetFocused(true)
		return nil
	}
	m.Focus = headerbar.PaneInput
	m.History.SetFocused(false)
	return m.Input.Focus()
}
