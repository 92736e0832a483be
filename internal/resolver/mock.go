// internal/resolver/mock.go
package resolver

import (
	"context"
	"sync"
	"time"
)

// Mock is a test double for Resolver.
//
// By default Resolve answers immediately with a stream whose URI is
// "stream://" + reference. Register per-reference results with SetResult and
// SetError, or call Hold to park resolutions until Release.
type Mock struct {
	mu      sync.Mutex
	calls   []string
	results map[string]Stream
	errs    map[string]error
	held    map[string]chan struct{}
}

// NewMock creates a new mock resolver for testing.
func NewMock() *Mock {
	return &Mock{
		results: make(map[string]Stream),
		errs:    make(map[string]error),
		held:    make(map[string]chan struct{}),
	}
}

// Resolve records the call and returns the configured outcome.
func (m *Mock) Resolve(ctx context.Context, reference string) (Stream, error) {
	m.mu.Lock()
	m.calls = append(m.calls, reference)
	gate := m.held[reference]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Stream{}, wrapContext(reference, ctx.Err())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[reference]; ok {
		return Stream{}, err
	}
	if s, ok := m.results[reference]; ok {
		return s, nil
	}
	return Stream{
		URI:        "stream://" + reference,
		Reference:  reference,
		ResolvedAt: time.Now(),
	}, nil
}

// Test helpers

// SetResult makes reference resolve to s.
func (m *Mock) SetResult(reference string, s Stream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[reference] = s
}

// SetError makes reference fail with err.
func (m *Mock) SetError(reference string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[reference] = err
}

// Hold parks resolutions of reference until Release is called.
func (m *Mock) Hold(reference string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[reference] = make(chan struct{})
}

// Release lets held resolutions of reference complete.
func (m *Mock) Release(reference string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gate, ok := m.held[reference]; ok {
		close(gate)
		delete(m.held, reference)
	}
}

// Calls returns the references passed to Resolve, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Verify Mock implements Resolver at compile time.
var _ Resolver = (*Mock)(nil)
