package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged <-chan StateChange
	Ready        <-chan ReadyEvent
	Error        <-chan ErrorEvent
	Warning      <-chan WarningEvent
	Done         <-chan struct{}

	// Internal write channels
	stateCh   chan StateChange
	readyCh   chan ReadyEvent
	errorCh   chan ErrorEvent
	warningCh chan WarningEvent
	doneCh    chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:   make(chan StateChange, eventBufferSize),
		readyCh:   make(chan ReadyEvent, eventBufferSize),
		errorCh:   make(chan ErrorEvent, eventBufferSize),
		warningCh: make(chan WarningEvent, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Ready = s.readyCh
	s.Error = s.errorCh
	s.Warning = s.warningCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendReady sends a ready event (non-blocking).
func (s *Subscription) sendReady(e ReadyEvent) {
	select {
	case s.readyCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}

// sendWarning sends a warning event (non-blocking).
func (s *Subscription) sendWarning(e WarningEvent) {
	select {
	case s.warningCh <- e:
	default:
	}
}
