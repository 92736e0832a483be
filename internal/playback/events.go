package playback

// StateChange is emitted on every state transition.
type StateChange struct {
	Previous State
	Current  State
	// Reference is the media reference of the request that caused the
	// transition, empty for transitions without one (e.g. Stop from Idle).
	Reference string
}

// ReadyEvent is emitted when a session enters Playing from Preparing.
//
// Emitted by:
//   - the engine reporting the stream prepared
//
// NOT emitted by:
//   - Resume (Paused → Playing): the stream was already ready
type ReadyEvent struct {
	Session Session
}

// ErrorEvent is emitted when the controller enters Failed.
type ErrorEvent struct {
	Reference string
	Failure   Failure
}

// WarningEvent reports a non-fatal problem, such as a render sink that could
// not be bound. The controller keeps running.
type WarningEvent struct {
	Kind    ErrorKind
	Message string
}
