// internal/playback/state.go
package playback

// State represents the session state machine.
//
//	             Play(ref)                 resolved               prepared
//	┌─────────┐ ──────────▶ ┌───────────┐ ────────▶ ┌───────────┐ ────────▶ ┌─────────┐
//	│  Idle   │             │ Resolving │           │ Preparing │           │ Playing │◀─┐
//	└─────────┘             └───────────┘           └───────────┘           └─────────┘  │
//	                              │ resolve error         │ engine error   pause │  ▲     │
//	                              ▼                       ▼                      ▼  │     │
//	                         ┌─────────┐ ◀────────────────┘               ┌────────┐ │     │
//	                         │ Failed  │ ◀──────── runtime error ──────── │ Paused │─┘     │
//	                         └─────────┘                                  └────────┘ resume│
//
// Valid transitions:
//   - Idle/Stopped/Failed → Resolving (via Play)
//   - Resolving → Preparing (resolution succeeded)
//   - Resolving → Failed    (resolution failed)
//   - Preparing → Playing   (engine prepared)
//   - Preparing → Failed    (engine rejected the stream)
//   - Playing   → Paused    (via Pause)
//   - Paused    → Playing   (via Resume, or Play with the same reference)
//   - Playing/Paused → Failed  (engine runtime error)
//   - Playing/Paused → Stopped (end of media)
//   - any → Stopped   (via Stop)
//   - Resolving/Preparing/Playing/Paused → Resolving (Play supersedes the session)
//
// No-op transitions (handled gracefully):
//   - Pause outside Playing
//   - Resume outside Paused
//   - Stop while Stopped
type State int

const (
	StateIdle State = iota
	StateResolving
	StatePreparing
	StatePlaying
	StatePaused
	StateStopped
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolving:
		return "Resolving"
	case StatePreparing:
		return "Preparing"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a session is bound to the engine (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// IsPending returns true while a Play request is in flight.
func (s State) IsPending() bool {
	return s == StateResolving || s == StatePreparing
}

// SinkVisible reports whether the render sink is shown in this state.
// This is the only place visibility is decided.
func (s State) SinkVisible() bool {
	return s.IsActive()
}

// ErrorKind classifies a playback failure.
type ErrorKind int

const (
	// KindConfiguration is a missing or unbindable output sink. Never fatal.
	KindConfiguration ErrorKind = iota + 1
	// KindResolution covers invalid references and resolution service errors.
	KindResolution
	// KindPreparation means the engine rejected the resolved stream.
	KindPreparation
	// KindRuntime means the engine failed during playback.
	KindRuntime
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindResolution:
		return "resolution"
	case KindPreparation:
		return "preparation"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Failure describes why the controller entered StateFailed.
type Failure struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements error.
func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return f.Kind.String() + ": " + f.Message
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}
