// internal/player/mock.go
package player

import "sync"

// Mock is a test double for Engine.
//
// Prepare only records the request; the test decides the outcome with
// CompletePrepare, FailPrepare, Fail or Finish.
type Mock struct {
	mu           sync.Mutex
	state        State
	bindErr      error
	playErr      error
	output       *Output
	prepareCalls []string
	playCalls    int
	pauseCalls   int
	stopCalls    int
	closed       bool
	cb           Callbacks
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{state: Stopped}
}

func (m *Mock) Bind(out Output) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindErr != nil {
		return m.bindErr
	}
	m.output = &out
	return nil
}

func (m *Mock) Prepare(uri string, cb Callbacks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepareCalls = append(m.prepareCalls, uri)
	m.cb = cb
	m.state = Loading
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	if !m.state.CanPlay() {
		return ErrNotPrepared
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	if m.state.CanPause() {
		m.state = Paused
	}
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.state = Stopped
	m.cb = Callbacks{}
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.state = Stopped
	return nil
}

// Test helpers

// SetBindError makes Bind fail with err.
func (m *Mock) SetBindError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindErr = err
}

// SetPlayError makes Play fail with err.
func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// CompletePrepare reports the pending Prepare as successful.
func (m *Mock) CompletePrepare() {
	cb := m.transition(Ready)
	cb.prepared()
}

// FailPrepare reports the pending Prepare as failed.
func (m *Mock) FailPrepare(err error) {
	cb := m.transition(Stopped)
	cb.fail(err)
}

// Fail reports a runtime error on the current stream.
func (m *Mock) Fail(err error) {
	cb := m.transition(Stopped)
	cb.fail(err)
}

// Finish reports the current stream reaching its end.
func (m *Mock) Finish() {
	cb := m.transition(Stopped)
	cb.finished()
}

// Callbacks returns the callbacks of the latest Prepare, so tests can
// replay stale completions.
func (m *Mock) Callbacks() Callbacks {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cb
}

func (m *Mock) transition(s State) Callbacks {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	return m.cb
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Output returns the bound output, or nil.
func (m *Mock) Output() *Output {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output
}

func (m *Mock) PrepareCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prepareCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
