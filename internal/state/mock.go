// internal/state/mock.go
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/llehouerou/tubeplay/internal/resolver"
)

// Mock is a test double for Manager.
type Mock struct {
	mu          sync.Mutex
	history     map[string]HistoryEntry
	resolutions map[string]resolver.Stream
	input       *InputState
	closed      bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{
		history:     make(map[string]HistoryEntry),
		resolutions: make(map[string]resolver.Stream),
	}
}

func (m *Mock) LookupResolution(reference string) (resolver.Stream, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.resolutions[reference]
	return s, ok, nil
}

func (m *Mock) SaveResolution(s resolver.Stream) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolutions[s.Reference] = s
	return nil
}

func (m *Mock) RecordHistory(reference, title string, outcome Outcome, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.history[reference]
	e.Reference = reference
	if title != "" {
		e.Title = title
	}
	if outcome == OutcomePlayed {
		e.PlayCount++
	}
	e.LastPlayedAt = at
	e.LastOutcome = outcome
	m.history[reference] = e
	return nil
}

func (m *Mock) ListHistory(limit int) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]HistoryEntry, 0, len(m.history))
	for _, e := range m.history {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastPlayedAt.After(entries[j].LastPlayedAt)
	})
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *Mock) DeleteHistory(reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, reference)
	return nil
}

func (m *Mock) SaveInput(state InputState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = &state
}

func (m *Mock) GetInput() (*InputState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
