package playback

import (
	"time"

	"github.com/llehouerou/tubeplay/internal/resolver"
)

// Session is one resolved stream bound to the engine. At most one exists at
// a time; it is dropped on Stop, on failure, or when a new Play replaces it.
type Session struct {
	ID        string
	Stream    resolver.Stream
	StartedAt time.Time
}

// Title returns the stream title, falling back to the reference.
func (s Session) Title() string {
	if s.Stream.Title != "" {
		return s.Stream.Title
	}
	return s.Stream.Reference
}
