// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionSwitchFocus Action = "switch_focus"
	ActionHelp        Action = "help"

	// Input field actions
	ActionSubmit     Action = "submit"      // enter - play the typed reference
	ActionClearInput Action = "clear_input" // esc

	// Playback actions
	ActionPlayPause Action = "play_pause"
	ActionStop      Action = "stop"
	ActionRetry     Action = "retry" // r - play the last reference again

	// History list actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionSelect    Action = "select" // enter - replay entry
	ActionDelete    Action = "delete" // d/delete - remove entry
)
