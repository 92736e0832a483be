package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// initSpeaker opens the audio device once, at the rate of the first stream.
// Later streams are resampled to that rate.
func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return speakerSampleRate, nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return 0, err
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return rate, nil
}

// Audio plays the audio track of a stream through the local sound device.
// It has no video output: Bind always returns ErrNoVideo.
type Audio struct {
	client *retryablehttp.Client
	logger zerolog.Logger

	mu      sync.Mutex
	state   State
	token   uint64
	cancel  context.CancelFunc
	cb      Callbacks
	stream  *decodedStream
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	started bool
	closed  bool
	level   float64
	muted   bool
}

// NewAudio creates an audio engine fetching streams with a retrying HTTP
// client that logs through logger.
func NewAudio(logger zerolog.Logger) *Audio {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = leveledLogger{logger}
	return &Audio{
		client: client,
		logger: logger,
		state:  Stopped,
		level:  1,
	}
}

// Bind implements Engine.
func (a *Audio) Bind(Output) error {
	return ErrNoVideo
}

// Prepare implements Engine. The stream is fetched and its decoder opened on
// a separate goroutine; a superseded fetch reports ErrSuperseded when it
// unwinds.
func (a *Audio) Prepare(uri string, cb Callbacks) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		cb.fail(ErrClosed)
		return
	}
	a.release()
	a.token++
	token := a.token
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.cb = cb
	a.state = Loading
	a.mu.Unlock()

	go func() {
		s, err := openStream(ctx, a.client, uri)

		a.mu.Lock()
		if token != a.token {
			a.mu.Unlock()
			if s != nil {
				_ = s.Close()
			}
			cb.fail(ErrSuperseded)
			return
		}
		if err != nil {
			a.cancel = nil
			cancel()
			a.state = Stopped
			a.cb = Callbacks{}
			a.mu.Unlock()
			cb.fail(err)
			return
		}
		a.stream = s
		a.state = Ready
		a.mu.Unlock()

		a.logger.Debug().
			Str("format", s.kind).
			Int("sample_rate", int(s.format.SampleRate)).
			Msg("audio stream prepared")
		cb.prepared()
	}()
}

// Play implements Engine.
func (a *Audio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if !a.state.CanPlay() || a.stream == nil {
		return ErrNotPrepared
	}

	if a.started {
		speaker.Lock()
		a.ctrl.Paused = false
		speaker.Unlock()
		a.state = Playing
		return nil
	}

	rate, err := initSpeaker(a.stream.format.SampleRate)
	if err != nil {
		return err
	}

	var s beep.Streamer = a.stream
	if a.stream.format.SampleRate != rate {
		s = beep.Resample(4, a.stream.format.SampleRate, rate, a.stream)
	}
	a.ctrl = &beep.Ctrl{Streamer: s}
	a.volume = &effects.Volume{Streamer: a.ctrl, Base: 2, Silent: a.muted}
	a.volume.Volume = levelToVolume(a.level)

	token := a.token
	speaker.Play(beep.Seq(a.volume, beep.Callback(func() {
		// Runs under the speaker lock.
		go a.finish(token)
	})))
	a.started = true
	a.state = Playing
	return nil
}

// Pause implements Engine.
func (a *Audio) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.CanPause() || a.ctrl == nil {
		return nil
	}
	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()
	a.state = Paused
	return nil
}

// Stop implements Engine.
func (a *Audio) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.release()
	a.token++
	return nil
}

// Close implements Engine.
func (a *Audio) Close() error {
	if err := a.Stop(); err != nil {
		return err
	}
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return nil
}

// State returns the engine state.
func (a *Audio) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// release tears down the current stream. Caller holds a.mu.
func (a *Audio) release() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.started {
		speaker.Clear()
		a.started = false
	}
	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.logger.Debug().Err(err).Msg("close audio stream")
		}
		a.stream = nil
	}
	a.ctrl = nil
	a.volume = nil
	a.cb = Callbacks{}
	a.state = Stopped
}

// finish handles the end of the stream started under token.
func (a *Audio) finish(token uint64) {
	a.mu.Lock()
	if token != a.token || !a.state.IsActive() {
		a.mu.Unlock()
		return
	}
	cb := a.cb
	var err error
	if a.stream != nil {
		err = a.stream.Err()
	}
	a.release()
	a.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		cb.fail(err)
		return
	}
	cb.finished()
}

// leveledLogger routes retryablehttp logs into zerolog.
type leveledLogger struct {
	zerolog.Logger
}

func (l leveledLogger) Error(msg string, kv ...any) { l.Logger.Error().Fields(kv).Msg(msg) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.Logger.Info().Fields(kv).Msg(msg) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.Logger.Debug().Fields(kv).Msg(msg) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.Logger.Warn().Fields(kv).Msg(msg) }

var (
	_ Engine                      = (*Audio)(nil)
	_ retryablehttp.LeveledLogger = leveledLogger{}
)
