// internal/playback/controller.go
package playback

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tubeplay/internal/errmsg"
	"github.com/llehouerou/tubeplay/internal/logging"
	"github.com/llehouerou/tubeplay/internal/player"
	"github.com/llehouerou/tubeplay/internal/resolver"
	"github.com/llehouerou/tubeplay/internal/sink"
)

// ErrClosed is returned by Play after Close.
var ErrClosed = errors.New("playback controller closed")

// surfaceTitle names the engine window.
const surfaceTitle = "tubeplay"

// Verify Controller implements Service at compile time.
var _ Service = (*Controller)(nil)

// Controller runs the resolve-then-play state machine.
//
// All state changes happen on a single control goroutine that consumes a
// mailbox of intents (Play, Pause, Resume, Stop) and completions (resolver
// results, engine callbacks). Every Play and Stop starts a new generation;
// completions from an older generation are dropped.
//
// OnReady and OnError callbacks, subscription sends and sink listeners run
// on the control goroutine. They must not block, but may call the control
// methods, which only enqueue.
type Controller struct {
	resolver resolver.Resolver
	engine   player.Engine
	surface  *sink.Surface
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string

	box  *mailbox
	quit chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
	closeErr  error

	// Owned by the control goroutine.
	gen    uint64
	cancel context.CancelFunc

	// Written by the control goroutine under mu.
	mu        sync.RWMutex
	state     State
	reference string
	session   *Session
	failure   *Failure
	headless  bool
	bindWarn  *WarningEvent

	subsMu sync.RWMutex
	subs   []*Subscription
	closed bool

	cbMu    sync.RWMutex
	onReady []func(Session)
	onError []func(string)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the time source used for session start times.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator sets the session id generator. The default is a random
// UUID.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// New creates a controller and starts its control goroutine. The surface is
// bound to the engine once; if that fails the controller runs headless and
// reports a configuration warning instead of failing.
func New(res resolver.Resolver, eng player.Engine, surface *sink.Surface, opts ...Option) *Controller {
	c := &Controller{
		resolver: res,
		engine:   eng,
		surface:  surface,
		logger:   zerolog.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
		box:      newMailbox(),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.bindSurface()
	go c.run()
	return c
}

func (c *Controller) bindSurface() {
	w, h := c.surface.Size()
	err := c.engine.Bind(player.Output{Width: w, Height: h, Title: surfaceTitle})
	if err == nil {
		c.logger.Debug().Int("width", w).Int("height", h).Msg("render surface bound")
		return
	}

	msg := errmsg.Format(errmsg.OpBindSink, err)
	c.logger.Warn().
		Err(err).
		Str(logging.FieldKind, KindConfiguration.String()).
		Msg("no render surface, playing headless")
	c.headless = true
	c.bindWarn = &WarningEvent{Kind: KindConfiguration, Message: msg}
}

// Play requests playback of reference. It returns ErrEmptyReference for a
// blank reference without touching the current session; any other outcome
// is reported asynchronously.
//
// Play while Paused on the same reference resumes without resolving again.
// Any other Play supersedes the current request or session.
func (c *Controller) Play(reference string) error {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return ErrEmptyReference
	}
	if !c.box.post(playMsg{reference: ref}) {
		return ErrClosed
	}
	return nil
}

// Pause pauses a playing session. No-op in any other state.
func (c *Controller) Pause() { c.box.post(pauseMsg{}) }

// Resume resumes a paused session. No-op in any other state.
func (c *Controller) Resume() { c.box.post(resumeMsg{}) }

// Stop ends the current request or session from any state.
func (c *Controller) Stop() { c.box.post(stopMsg{}) }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Reference returns the reference of the latest accepted Play.
func (c *Controller) Reference() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reference
}

// Session returns the current session, if any.
func (c *Controller) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Failure returns why the controller last failed, or nil. It is cleared by
// the next Play.
func (c *Controller) Failure() *Failure {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failure == nil {
		return nil
	}
	f := *c.failure
	return &f
}

// Headless reports whether the engine runs without a render surface.
func (c *Controller) Headless() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headless
}

// Sink returns a read-only view of the render surface.
func (c *Controller) Sink() sink.View {
	return c.surface
}

// Subscribe creates a new event subscription. A headless controller
// replays its configuration warning to each new subscriber.
func (c *Controller) Subscribe() *Subscription {
	sub := newSubscription()

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if c.closed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)

	c.mu.RLock()
	warn := c.bindWarn
	c.mu.RUnlock()
	if warn != nil {
		sub.sendWarning(*warn)
	}
	return sub
}

// OnReady registers fn to run each time a session starts playing.
func (c *Controller) OnReady(fn func(Session)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onReady = append(c.onReady, fn)
}

// OnError registers fn to run with a user-facing message each time the
// controller enters Failed.
func (c *Controller) OnError(fn func(message string)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onError = append(c.onError, fn)
}

// Close stops the control goroutine, cancels any resolution, stops and
// closes the engine and closes every subscription.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
		<-c.done
		c.wg.Wait()
		c.closeErr = c.engine.Close()

		c.subsMu.Lock()
		for _, sub := range c.subs {
			sub.close()
		}
		c.subs = nil
		c.closed = true
		c.subsMu.Unlock()
	})
	return c.closeErr
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			c.shutdown()
			return
		case <-c.box.wake:
		}
		for _, m := range c.box.drain() {
			c.handle(m)
		}
	}
}

func (c *Controller) shutdown() {
	c.box.close()
	busy := c.engineBusy()
	c.supersede()
	if busy {
		c.surface.SetVisible(false)
	}
}

func (c *Controller) handle(m message) {
	switch m := m.(type) {
	case playMsg:
		c.handlePlay(m.reference)
	case pauseMsg:
		c.handlePause()
	case resumeMsg:
		c.handleResume()
	case stopMsg:
		c.handleStop()
	case resolvedMsg:
		c.handleResolved(m)
	case preparedMsg:
		c.handlePrepared(m)
	case engineErrMsg:
		c.handleEngineError(m)
	case finishedMsg:
		c.handleFinished(m)
	}
}

func (c *Controller) handlePlay(ref string) {
	if c.state == StatePaused && ref == c.reference {
		c.handleResume()
		return
	}

	c.supersede()
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.mu.Lock()
	c.reference = ref
	c.session = nil
	c.failure = nil
	c.mu.Unlock()

	c.logger.Info().
		Str(logging.FieldReference, ref).
		Uint64(logging.FieldGeneration, gen).
		Msg("resolving")
	c.transition(StateResolving)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		s, err := c.resolver.Resolve(ctx, ref)
		c.box.post(resolvedMsg{gen: gen, reference: ref, stream: s, err: err})
	}()
}

func (c *Controller) handleResolved(m resolvedMsg) {
	if m.gen != c.gen || c.state != StateResolving {
		c.logStale("resolution", m.gen)
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if m.err != nil {
		c.fail(KindResolution, errmsg.Format(errmsg.OpResolve, m.err), m.err)
		return
	}

	stream := m.stream
	if stream.Reference == "" {
		stream.Reference = m.reference
	}
	s := Session{ID: c.newID(), Stream: stream, StartedAt: c.now()}
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()

	c.logger.Info().
		Str(logging.FieldReference, m.reference).
		Str(logging.FieldSessionID, s.ID).
		Str("title", stream.Title).
		Msg("resolved, preparing stream")
	c.transition(StatePreparing)
	c.engine.Prepare(stream.URI, c.callbacks(m.gen))
}

func (c *Controller) handlePrepared(m preparedMsg) {
	if m.gen != c.gen || c.state != StatePreparing {
		c.logStale("prepared", m.gen)
		return
	}

	if err := c.engine.Play(); err != nil {
		c.stopEngine()
		c.fail(KindPreparation, errmsg.Format(errmsg.OpPlayback, err), err)
		return
	}

	c.transition(StatePlaying)
	if s, ok := c.Session(); ok {
		c.logger.Info().Str(logging.FieldSessionID, s.ID).Msg("playing")
		c.publishReady(s)
	}
}

func (c *Controller) handleEngineError(m engineErrMsg) {
	if m.gen != c.gen {
		c.logStale("engine error", m.gen)
		return
	}

	switch c.state {
	case StatePreparing:
		c.fail(KindPreparation, errmsg.Format(errmsg.OpPrepare, m.err), m.err)
	case StatePlaying, StatePaused:
		c.stopEngine()
		c.fail(KindRuntime, errmsg.Format(errmsg.OpPlayback, m.err), m.err)
	default:
		c.logStale("engine error", m.gen)
	}
}

func (c *Controller) handleFinished(m finishedMsg) {
	if m.gen != c.gen || !c.state.IsActive() {
		c.logStale("finished", m.gen)
		return
	}

	c.logger.Info().Str(logging.FieldReference, c.reference).Msg("end of media")
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.transition(StateStopped)
}

func (c *Controller) handlePause() {
	if c.state != StatePlaying {
		return
	}
	if err := c.engine.Pause(); err != nil {
		c.stopEngine()
		c.fail(KindRuntime, errmsg.Format(errmsg.OpPause, err), err)
		return
	}
	c.transition(StatePaused)
}

func (c *Controller) handleResume() {
	if c.state != StatePaused {
		return
	}
	if err := c.engine.Play(); err != nil {
		c.stopEngine()
		c.fail(KindRuntime, errmsg.Format(errmsg.OpResume, err), err)
		return
	}
	c.transition(StatePlaying)
}

func (c *Controller) handleStop() {
	c.supersede()
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.transition(StateStopped)
}

// supersede starts a new generation: the in-flight resolution is canceled
// and a stream held by the engine is stopped.
func (c *Controller) supersede() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.engineBusy() {
		c.stopEngine()
	}
}

// engineBusy reports whether the engine holds a stream for this controller.
func (c *Controller) engineBusy() bool {
	return c.state == StatePreparing || c.state.IsActive()
}

func (c *Controller) stopEngine() {
	if err := c.engine.Stop(); err != nil {
		c.logger.Warn().Err(err).Msg("engine stop")
	}
}

func (c *Controller) fail(kind ErrorKind, message string, err error) {
	f := &Failure{Kind: kind, Message: message, Err: err}

	c.mu.Lock()
	c.session = nil
	c.failure = f
	ref := c.reference
	c.mu.Unlock()

	c.logger.Error().
		Err(err).
		Str(logging.FieldReference, ref).
		Str(logging.FieldKind, kind.String()).
		Msg("playback failed")
	c.transition(StateFailed)
	c.publishError(ErrorEvent{Reference: ref, Failure: *f})
}

// transition moves to next and applies the sink visibility for it. The
// surface is updated even when the state does not change, so Stop always
// leaves it hidden.
func (c *Controller) transition(next State) {
	c.surface.SetVisible(next.SinkVisible())

	prev := c.state
	if prev == next {
		return
	}
	c.mu.Lock()
	c.state = next
	ref := c.reference
	c.mu.Unlock()

	c.logger.Debug().
		Stringer(logging.FieldOldState, prev).
		Stringer(logging.FieldNewState, next).
		Msg("state change")
	c.publishState(StateChange{Previous: prev, Current: next, Reference: ref})
}

func (c *Controller) callbacks(gen uint64) player.Callbacks {
	return player.Callbacks{
		Prepared: func() { c.box.post(preparedMsg{gen: gen}) },
		Error:    func(err error) { c.box.post(engineErrMsg{gen: gen, err: err}) },
		Finished: func() { c.box.post(finishedMsg{gen: gen}) },
	}
}

func (c *Controller) logStale(what string, gen uint64) {
	c.logger.Debug().
		Uint64(logging.FieldGeneration, gen).
		Uint64("current_generation", c.gen).
		Stringer("state", c.state).
		Msgf("dropping stale %s", what)
}

func (c *Controller) publishState(e StateChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(e)
	}
}

func (c *Controller) publishReady(s Session) {
	c.subsMu.RLock()
	for _, sub := range c.subs {
		sub.sendReady(ReadyEvent{Session: s})
	}
	c.subsMu.RUnlock()

	c.cbMu.RLock()
	fns := append([]func(Session)(nil), c.onReady...)
	c.cbMu.RUnlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (c *Controller) publishError(e ErrorEvent) {
	c.subsMu.RLock()
	for _, sub := range c.subs {
		sub.sendError(e)
	}
	c.subsMu.RUnlock()

	c.cbMu.RLock()
	fns := append([]func(string)(nil), c.onError...)
	c.cbMu.RUnlock()
	for _, fn := range fns {
		fn(e.Failure.Message)
	}
}
