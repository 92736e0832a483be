package notify

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tubeplay/internal/playback"
)

const (
	nowPlayingTimeout = 5000
	failureTimeout    = 8000
)

// Announcer turns playback outcomes into desktop notifications. Each one
// replaces the previous, so only the latest stays on screen.
type Announcer struct {
	notifier Notifier
	logger   zerolog.Logger

	mu     sync.Mutex
	lastID uint32
}

// NewAnnouncer creates an announcer sending through n.
func NewAnnouncer(n Notifier, logger zerolog.Logger) *Announcer {
	return &Announcer{notifier: n, logger: logger}
}

// NowPlaying announces a session that started playing.
func (a *Announcer) NowPlaying(title, reference string) {
	body := reference
	if title == "" {
		title, body = reference, ""
	}
	a.send(Notification{
		Title:   "Now playing",
		Body:    title + bodySuffix(body),
		Timeout: nowPlayingTimeout,
		Urgency: UrgencyLow,
	})
}

// Failed announces a playback failure with its user-facing message.
func (a *Announcer) Failed(message string) {
	a.send(Notification{
		Title:   "Playback failed",
		Body:    message,
		Timeout: failureTimeout,
		Urgency: UrgencyCritical,
	})
}

// Dismiss closes the last notification, if any.
func (a *Announcer) Dismiss() {
	a.mu.Lock()
	id := a.lastID
	a.lastID = 0
	a.mu.Unlock()

	if id == 0 {
		return
	}
	if err := a.notifier.Close(id); err != nil {
		a.logger.Debug().Err(err).Msg("close notification")
	}
}

// Watch announces the outcomes published on sub until it is done. The
// notification daemon is only ever called from this goroutine.
func (a *Announcer) Watch(sub *playback.Subscription) {
	for {
		select {
		case e := <-sub.Ready:
			a.NowPlaying(e.Session.Stream.Title, e.Session.Stream.Reference)
		case e := <-sub.Error:
			a.Failed(e.Failure.Message)
		case e := <-sub.StateChanged:
			if e.Current == playback.StateStopped {
				a.Dismiss()
			}
		case <-sub.Warning:
		case <-sub.Done:
			return
		}
	}
}

func (a *Announcer) send(n Notification) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n.ReplacesID = a.lastID
	id, err := a.notifier.Notify(n)
	if err != nil {
		a.logger.Warn().Err(err).Str("title", n.Title).Msg("desktop notification failed")
		return
	}
	a.lastID = id
}

func bodySuffix(body string) string {
	if body == "" {
		return ""
	}
	return "\n" + body
}
