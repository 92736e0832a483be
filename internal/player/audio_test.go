package player

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome collects the callbacks fired for one Prepare.
type outcome struct {
	prepared chan struct{}
	errs     chan error
	finished chan struct{}
}

func newOutcome() *outcome {
	return &outcome{
		prepared: make(chan struct{}, 4),
		errs:     make(chan error, 4),
		finished: make(chan struct{}, 4),
	}
}

func (o *outcome) callbacks() Callbacks {
	return Callbacks{
		Prepared: func() { o.prepared <- struct{}{} },
		Error:    func(err error) { o.errs <- err },
		Finished: func() { o.finished <- struct{}{} },
	}
}

func (o *outcome) waitPrepared(t *testing.T) {
	t.Helper()
	select {
	case <-o.prepared:
	case err := <-o.errs:
		t.Fatalf("prepare failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Prepared")
	}
}

func (o *outcome) waitError(t *testing.T) error {
	t.Helper()
	select {
	case err := <-o.errs:
		return err
	case <-o.prepared:
		t.Fatal("unexpected Prepared")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Error")
	}
	return nil
}

// assertQuiet checks that no further callback fires.
func (o *outcome) assertQuiet(t *testing.T) {
	t.Helper()
	select {
	case <-o.prepared:
		t.Error("unexpected Prepared")
	case err := <-o.errs:
		t.Errorf("unexpected Error: %v", err)
	case <-o.finished:
		t.Error("unexpected Finished")
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestAudio() *Audio {
	a := NewAudio(zerolog.Nop())
	a.client.RetryMax = 0
	return a
}

func TestAudio_BindHasNoVideo(t *testing.T) {
	a := newTestAudio()
	assert.ErrorIs(t, a.Bind(Output{Width: 1280, Height: 720}), ErrNoVideo)
}

func TestAudio_PlayWithoutPrepare(t *testing.T) {
	a := newTestAudio()
	assert.ErrorIs(t, a.Play(), ErrNotPrepared)
	assert.NoError(t, a.Pause())
	assert.Equal(t, Stopped, a.State())
}

func TestAudio_PrepareWav(t *testing.T) {
	body := wavBytes(44100, 4410)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	a := newTestAudio()
	o := newOutcome()
	a.Prepare(srv.URL+"/a.wav", o.callbacks())

	o.waitPrepared(t)
	assert.Equal(t, Ready, a.State())

	require.NoError(t, a.Stop())
	assert.Equal(t, Stopped, a.State())
	o.assertQuiet(t)
}

func TestAudio_PrepareFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	a := newTestAudio()
	o := newOutcome()
	a.Prepare(srv.URL+"/gone.mp3", o.callbacks())

	err := o.waitError(t)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, Stopped, a.State())
	o.assertQuiet(t)
}

func TestAudio_PrepareSuperseded(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	body := wavBytes(8000, 800)
	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer fast.Close()

	a := newTestAudio()
	first, second := newOutcome(), newOutcome()
	a.Prepare(slow.URL+"/a.wav", first.callbacks())
	a.Prepare(fast.URL+"/b.wav", second.callbacks())

	assert.ErrorIs(t, first.waitError(t), ErrSuperseded)
	second.waitPrepared(t)
	first.assertQuiet(t)

	require.NoError(t, a.Close())
}

func TestAudio_StopDuringPrepare(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer slow.Close()

	a := newTestAudio()
	o := newOutcome()
	a.Prepare(slow.URL+"/a.wav", o.callbacks())
	require.NoError(t, a.Stop())

	assert.ErrorIs(t, o.waitError(t), ErrSuperseded)
	o.assertQuiet(t)
}

func TestAudio_PrepareAfterClose(t *testing.T) {
	a := newTestAudio()
	require.NoError(t, a.Close())

	o := newOutcome()
	a.Prepare("http://127.0.0.1:1/a.wav", o.callbacks())

	assert.True(t, errors.Is(o.waitError(t), ErrClosed))
	assert.ErrorIs(t, a.Play(), ErrClosed)
}

func TestAudio_Volume(t *testing.T) {
	a := newTestAudio()

	a.SetVolume(0.5)
	assert.InDelta(t, 0.5, a.Volume(), 1e-9)
	a.SetVolume(3)
	assert.InDelta(t, 1.0, a.Volume(), 1e-9)
	a.SetVolume(-1)
	assert.InDelta(t, 0.0, a.Volume(), 1e-9)

	a.SetMuted(true)
	assert.True(t, a.Muted())
}

func TestLevelToVolume(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{1, 0},
		{0.5, -1},
		{0.25, -2},
		{0, -10},
		{-1, -10},
		{2, 0},
	}
	for _, tt := range tests {
		if got := levelToVolume(tt.level); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("levelToVolume(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
