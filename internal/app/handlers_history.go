package app

import (
	"github.com/llehouerou/tubeplay/internal/app/handler"
	"github.com/llehouerou/tubeplay/internal/keymap"
)

// handleHistoryKeys handles list navigation, replay and removal.
func (m *Model) handleHistoryKeys(key string) handler.Result {
	switch m.resolve(key) { //nolint:exhaustive // only handling history actions
	case keymap.ActionMoveUp:
		m.History.Move(-1)
	case keymap.ActionMoveDown:
		m.History.Move(1)
	case keymap.ActionJumpStart:
		m.History.JumpStart()
	case keymap.ActionJumpEnd:
		m.History.JumpEnd()
	case keymap.ActionSelect:
		entry, ok := m.History.Selected()
		if !ok {
			return handler.HandledNoCmd
		}
		m.Input.SetValue(entry.Reference)
		m.saveInput()
		return handler.Handled(m.play(entry.Reference))
	case keymap.ActionDelete:
		entry, ok := m.History.Selected()
		if !ok {
			return handler.HandledNoCmd
		}
		return handler.Handled(m.deleteHistoryCmd(entry.Reference))
	default:
		return handler.NotHandled
	}
	return handler.HandledNoCmd
}
