package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a resolved URI is reused. Signed stream
// URLs handed out by video sites expire after a few hours.
const DefaultCacheTTL = 30 * time.Minute

// Store persists resolved streams between runs.
type Store interface {
	// LookupResolution returns the stored stream for reference, if any.
	LookupResolution(reference string) (Stream, bool, error)
	// SaveResolution stores or replaces the stream for s.Reference.
	SaveResolution(s Stream) error
}

// Cached serves recent resolutions from a Store and collapses concurrent
// resolutions of the same reference into one call to Next.
type Cached struct {
	next   Resolver
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
	group  singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context of a shared resolution and the number of callers
// still waiting on it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewCached wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCached(next Resolver, store Store, ttl time.Duration, logger zerolog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		next:    next,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		flights: make(map[string]*flight),
	}
}

// Resolve implements Resolver.
//
// Concurrent callers share one call to Next. A canceled caller returns
// immediately; the shared call is canceled once no caller is left waiting.
func (c *Cached) Resolve(ctx context.Context, reference string) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return Stream{}, wrapContext(reference, err)
	}

	if s, ok := c.lookup(reference); ok {
		return s, nil
	}

	f := c.join(ctx, reference)
	defer c.leave(reference, f)

	ch := c.group.DoChan(reference, func() (any, error) {
		s, err := c.next.Resolve(f.ctx, reference)
		if err != nil {
			return Stream{}, err
		}
		if err := c.store.SaveResolution(s); err != nil {
			c.logger.Warn().Err(err).Str("reference", reference).Msg("store resolution")
		}
		return s, nil
	})

	select {
	case <-ctx.Done():
		return Stream{}, wrapContext(reference, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Stream{}, res.Err
		}
		return res.Val.(Stream), nil
	}
}

func (c *Cached) join(ctx context.Context, reference string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[reference]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[reference] = f
	}
	f.waiters++
	return f
}

// leave drops a waiter. The last one cancels the shared call and forgets
// it, so a later caller starts afresh instead of joining a canceled call.
func (c *Cached) leave(reference string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[reference] == f {
		delete(c.flights, reference)
		c.group.Forget(reference)
	}
}

func (c *Cached) lookup(reference string) (Stream, bool) {
	s, ok, err := c.store.LookupResolution(reference)
	if err != nil {
		c.logger.Warn().Err(err).Str("reference", reference).Msg("lookup resolution")
		return Stream{}, false
	}
	if !ok || s.URI == "" {
		return Stream{}, false
	}
	if c.now().Sub(s.ResolvedAt) > c.ttl {
		return Stream{}, false
	}
	c.logger.Debug().Str("reference", reference).Time("resolved_at", s.ResolvedAt).Msg("resolution cache hit")
	return s, true
}

var _ Resolver = (*Cached)(nil)
