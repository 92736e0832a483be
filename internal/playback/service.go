package playback

import (
	"errors"

	"github.com/llehouerou/tubeplay/internal/sink"
)

// ErrEmptyReference is returned by Play for an empty or blank reference.
var ErrEmptyReference = errors.New("empty media reference")

// Service defines the playback controller contract.
//
// Control methods enqueue an intent and return immediately; the outcome is
// observed through State, subscriptions and the OnReady/OnError callbacks.
type Service interface {
	// Playback control
	Play(reference string) error
	Pause()
	Resume()
	Stop()

	// State queries
	State() State
	Session() (Session, bool)
	Failure() *Failure
	Headless() bool
	Reference() string
	Sink() sink.View

	// Notifications
	Subscribe() *Subscription
	OnReady(fn func(Session))
	OnError(fn func(message string))

	// Lifecycle
	Close() error
}
