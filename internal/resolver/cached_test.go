package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store.
type memStore struct {
	mu        sync.Mutex
	streams   map[string]Stream
	lookupErr error
	saveErr   error
	saves     int
}

func newMemStore() *memStore {
	return &memStore{streams: make(map[string]Stream)}
}

func (m *memStore) LookupResolution(reference string) (Stream, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return Stream{}, false, m.lookupErr
	}
	s, ok := m.streams[reference]
	return s, ok, nil
}

func (m *memStore) SaveResolution(s Stream) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.streams[s.Reference] = s
	return nil
}

func TestCached_MissResolvesAndStores(t *testing.T) {
	next := NewMock()
	store := newMemStore()
	c := NewCached(next, store, time.Minute, zerolog.Nop())

	s, err := c.Resolve(context.Background(), "ref")

	require.NoError(t, err)
	assert.Equal(t, "stream://ref", s.URI)
	assert.Equal(t, []string{"ref"}, next.Calls())
	assert.Equal(t, "stream://ref", store.streams["ref"].URI)
}

func TestCached_FreshHitSkipsNext(t *testing.T) {
	next := NewMock()
	store := newMemStore()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.streams["ref"] = Stream{URI: "cached://ref", Reference: "ref", ResolvedAt: now.Add(-10 * time.Minute)}
	c := NewCached(next, store, 30*time.Minute, zerolog.Nop())
	c.now = func() time.Time { return now }

	s, err := c.Resolve(context.Background(), "ref")

	require.NoError(t, err)
	assert.Equal(t, "cached://ref", s.URI)
	assert.Empty(t, next.Calls())
}

func TestCached_ExpiredEntryIsRefreshed(t *testing.T) {
	next := NewMock()
	store := newMemStore()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.streams["ref"] = Stream{URI: "cached://ref", Reference: "ref", ResolvedAt: now.Add(-2 * time.Hour)}
	c := NewCached(next, store, 30*time.Minute, zerolog.Nop())
	c.now = func() time.Time { return now }

	s, err := c.Resolve(context.Background(), "ref")

	require.NoError(t, err)
	assert.Equal(t, "stream://ref", s.URI)
	assert.Equal(t, []string{"ref"}, next.Calls())
}

func TestCached_StoreFailuresAreNotFatal(t *testing.T) {
	next := NewMock()
	store := newMemStore()
	store.lookupErr = errors.New("db locked")
	store.saveErr = errors.New("disk full")
	c := NewCached(next, store, 0, zerolog.Nop())

	s, err := c.Resolve(context.Background(), "ref")

	require.NoError(t, err)
	assert.Equal(t, "stream://ref", s.URI)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
}

func TestCached_ErrorsAreNotStored(t *testing.T) {
	next := NewMock()
	next.SetError("bad", &Error{Reference: "bad", Reason: ReasonInvalid})
	store := newMemStore()
	c := NewCached(next, store, time.Minute, zerolog.Nop())

	_, err := c.Resolve(context.Background(), "bad")

	assert.True(t, IsReason(err, ReasonInvalid))
	assert.Zero(t, store.saves)
}

// waitingResolver blocks until its context ends and reports the cause.
type waitingResolver struct {
	returned chan error
}

func (w *waitingResolver) Resolve(ctx context.Context, reference string) (Stream, error) {
	<-ctx.Done()
	w.returned <- ctx.Err()
	return Stream{}, wrapContext(reference, ctx.Err())
}

func (c *Cached) waiters(reference string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.flights[reference]; ok {
		return f.waiters
	}
	return 0
}

func TestCached_CanceledCallerCancelsResolution(t *testing.T) {
	next := &waitingResolver{returned: make(chan error, 1)}
	store := newMemStore()
	c := NewCached(next, store, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Resolve(ctx, "slow")
		errCh <- err
	}()

	require.Eventually(t, func() bool { return c.waiters("slow") == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, IsReason(err, ReasonCanceled))
	case <-time.After(time.Second):
		t.Fatal("canceled Resolve did not return")
	}
	select {
	case err := <-next.returned:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("shared resolution kept running after its only caller left")
	}
	assert.Zero(t, c.waiters("slow"))
	assert.Zero(t, store.saves)
}

func TestCached_SharedCallOutlivesOneCaller(t *testing.T) {
	next := NewMock()
	next.Hold("slow")
	store := newMemStore()
	c := NewCached(next, store, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Resolve(ctx, "slow")
		first <- err
	}()
	second := make(chan Stream, 1)
	go func() {
		s, _ := c.Resolve(context.Background(), "slow")
		second <- s
	}()

	require.Eventually(t, func() bool { return c.waiters("slow") == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	next.Release("slow")
	select {
	case s := <-second:
		assert.Equal(t, "stream://slow", s.URI)
	case <-time.After(time.Second):
		t.Fatal("remaining caller did not get the result")
	}
	assert.Len(t, next.Calls(), 1)
	_, ok, _ := store.LookupResolution("slow")
	assert.True(t, ok)
}
