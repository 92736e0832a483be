// Package keymap defines key bindings for the application.
package keymap

// Binding maps keys to an action in a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "input", "playback", "history"
}

// All contains all key bindings.
var All = []Binding{
	// Global
	{ActionQuit, []string{"ctrl+c"}, "Quit application", "global"},
	{ActionSwitchFocus, []string{"tab"}, "Switch focus", "global"},
	{ActionHelp, []string{"f1"}, "Show help", "global"},

	// Input field
	{ActionSubmit, []string{"enter"}, "Play reference", "input"},
	{ActionClearInput, []string{"esc"}, "Clear input", "input"},

	// Playback (outside the input field, where these keys are typed text)
	{ActionPlayPause, []string{" ", "space"}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionRetry, []string{"r"}, "Play last reference again", "playback"},
	{ActionQuit, []string{"q"}, "Quit application", "playback"},
	{ActionHelp, []string{"?"}, "Show help", "playback"},

	// History list
	{ActionMoveUp, []string{"k", "up"}, "Move up", "history"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "history"},
	{ActionJumpStart, []string{"g", "home"}, "First entry", "history"},
	{ActionJumpEnd, []string{"G", "end"}, "Last entry", "history"},
	{ActionSelect, []string{"enter"}, "Play entry", "history"},
	{ActionDelete, []string{"d", "delete"}, "Remove entry", "history"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
