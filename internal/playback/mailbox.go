package playback

import (
	"sync"

	"github.com/llehouerou/tubeplay/internal/resolver"
)

// message is anything the control loop consumes.
type message interface{ isMessage() }

// Intents from the public API.
type (
	playMsg   struct{ reference string }
	pauseMsg  struct{}
	resumeMsg struct{}
	stopMsg   struct{}
)

// Completions from the resolver and engine, tagged with the generation of
// the request that started them.
type (
	resolvedMsg struct {
		gen       uint64
		reference string
		stream    resolver.Stream
		err       error
	}
	preparedMsg  struct{ gen uint64 }
	engineErrMsg struct {
		gen uint64
		err error
	}
	finishedMsg struct{ gen uint64 }
)

func (playMsg) isMessage()      {}
func (pauseMsg) isMessage()     {}
func (resumeMsg) isMessage()    {}
func (stopMsg) isMessage()      {}
func (resolvedMsg) isMessage()  {}
func (preparedMsg) isMessage()  {}
func (engineErrMsg) isMessage() {}
func (finishedMsg) isMessage()  {}

// mailbox is an unbounded FIFO. Posting never blocks, so engine callbacks
// and resolver goroutines can always hand off their result.
type mailbox struct {
	mu     sync.Mutex
	queue  []message
	wake   chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

// post appends m and reports whether it was accepted.
func (b *mailbox) post(m message) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.queue = append(b.queue, m)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
	return true
}

// drain removes and returns every queued message.
func (b *mailbox) drain() []message {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.queue
	b.queue = nil
	return msgs
}

// close rejects further posts and drops anything queued.
func (b *mailbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.queue = nil
}
