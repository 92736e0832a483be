// Package sink models the render surface a video engine draws into.
//
// The surface carries target dimensions and a visibility flag. Only the
// playback controller changes visibility; everything else observes it
// through View.
package sink

import "sync"

// Default surface dimensions used when none are configured.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Options configures a Surface.
type Options struct {
	Width  int
	Height int
}

// View is the read-only side of a Surface.
type View interface {
	Size() (width, height int)
	Visible() bool
	OnChange(fn func(visible bool)) (remove func())
}

// Surface is a render target with a visibility flag.
type Surface struct {
	mu        sync.RWMutex
	width     int
	height    int
	visible   bool
	listeners map[int]func(bool)
	nextID    int
}

// New creates a hidden surface. Missing or non-positive dimensions fall back
// to DefaultWidth and DefaultHeight.
func New(opts Options) *Surface {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return &Surface{
		width:     w,
		height:    h,
		listeners: make(map[int]func(bool)),
	}
}

// Size returns the target dimensions.
func (s *Surface) Size() (width, height int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Visible reports whether the surface is shown.
func (s *Surface) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// SetVisible shows or hides the surface and reports whether it changed.
// Listeners are called synchronously, outside the lock, only on change.
func (s *Surface) SetVisible(visible bool) bool {
	s.mu.Lock()
	if s.visible == visible {
		s.mu.Unlock()
		return false
	}
	s.visible = visible
	fns := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(visible)
	}
	return true
}

// OnChange registers fn to be called on every visibility change. The
// returned function unregisters it.
func (s *Surface) OnChange(fn func(visible bool)) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

var _ View = (*Surface)(nil)
