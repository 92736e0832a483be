package player

import "errors"

// Engine is a media engine driven by the playback controller.
//
// Prepare is asynchronous: for every call exactly one of Callbacks.Prepared
// or Callbacks.Error fires. After Prepared, at most one of a runtime Error or
// Finished follows. Callbacks may run on any goroutine and must not block.
type Engine interface {
	// Bind attaches a render output. Engines without video return ErrNoVideo.
	Bind(out Output) error
	// Prepare starts loading uri. A later Prepare or Stop supersedes it.
	Prepare(uri string, cb Callbacks)
	// Play starts or resumes the prepared stream.
	Play() error
	// Pause pauses playback.
	Pause() error
	// Stop halts playback and drops the prepared stream.
	Stop() error
	// Close releases the engine. It is not usable afterwards.
	Close() error
}

// Callbacks receive the outcome of a Prepare.
type Callbacks struct {
	Prepared func()
	Error    func(error)
	Finished func()
}

func (cb Callbacks) prepared() {
	if cb.Prepared != nil {
		cb.Prepared()
	}
}

func (cb Callbacks) fail(err error) {
	if cb.Error != nil {
		cb.Error(err)
	}
}

func (cb Callbacks) finished() {
	if cb.Finished != nil {
		cb.Finished()
	}
}

// Output describes the render surface a video engine draws into.
type Output struct {
	Width  int
	Height int
	Title  string
}

var (
	// ErrNoVideo is returned by Bind on engines that cannot render video.
	ErrNoVideo = errors.New("engine has no video output")
	// ErrNotPrepared is returned by Play when no stream is prepared.
	ErrNotPrepared = errors.New("no prepared stream")
	// ErrSuperseded is delivered to a Prepare replaced by a later call.
	ErrSuperseded = errors.New("prepare superseded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine closed")
	// ErrEngineExited reports the engine process going away mid-session.
	ErrEngineExited = errors.New("engine process exited")
)
