// internal/player/state.go
package player

// State is an engine's view of its current stream.
//
//	┌──────────┐  prepare  ┌─────────┐  loaded  ┌───────┐  play  ┌─────────┐
//	│ Stopped  │ ────────▶ │ Loading │ ───────▶ │ Ready │ ─────▶ │ Playing │
//	└──────────┘           └─────────┘          └───────┘        └─────────┘
//	     ▲                      │ load error                        │  ▲
//	     │                      ▼                            pause  │  │ play
//	     └───────────────── Stopped                                 ▼  │
//	             stop / end of media (from any state)           ┌────────┐
//	                                                            │ Paused │
//	                                                            └────────┘
//
// Valid transitions:
//   - Stopped/any → Loading (via Prepare, superseding the previous stream)
//   - Loading → Ready   (stream opened)
//   - Loading → Stopped (stream failed to open)
//   - Ready   → Playing (via Play)
//   - Playing → Paused  (via Pause)
//   - Paused  → Playing (via Play)
//   - any     → Stopped (via Stop, or the stream ending)
//
// No-op transitions (handled gracefully):
//   - Pause outside Playing
//   - Stop while Stopped
type State int

const (
	Stopped State = iota
	Loading
	Ready
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a stream is rolling or paused.
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPlay returns true if Play has a stream to start or resume.
func (s State) CanPlay() bool {
	return s == Ready || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}
