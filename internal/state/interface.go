// internal/state/interface.go
package state

import (
	"time"

	"github.com/llehouerou/tubeplay/internal/resolver"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	resolver.Store

	RecordHistory(reference, title string, outcome Outcome, at time.Time) error
	ListHistory(limit int) ([]HistoryEntry, error)
	DeleteHistory(reference string) error

	SaveInput(state InputState)
	GetInput() (*InputState, error)

	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
