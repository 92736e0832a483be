package resolver

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"
)

// mediaExtensions lists path extensions that engines can open without
// resolution.
var mediaExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".m3u8": true,
	".mpd":  true,
	".webm": true,
	".mkv":  true,
	".mov":  true,
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".opus": true,
	".m4a":  true,
	".aac":  true,
}

// IsDirect reports whether reference is already a playable stream URL:
// an http(s) or file URL whose path ends with a known media extension.
func IsDirect(reference string) bool {
	u, err := url.Parse(strings.TrimSpace(reference))
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return false
		}
	case "file":
	default:
		return false
	}
	return mediaExtensions[strings.ToLower(path.Ext(u.Path))]
}

// Direct passes direct stream URLs through unchanged.
type Direct struct {
	now func() time.Time
}

// NewDirect creates a pass-through resolver.
func NewDirect() *Direct {
	return &Direct{now: time.Now}
}

// Resolve returns the reference itself as the stream URI.
func (d *Direct) Resolve(ctx context.Context, reference string) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return Stream{}, wrapContext(reference, err)
	}
	if !IsDirect(reference) {
		return Stream{}, &Error{Reference: reference, Reason: ReasonInvalid, Err: ErrNoStream}
	}

	uri := strings.TrimSpace(reference)
	u, _ := url.Parse(uri)
	return Stream{
		URI:        uri,
		Reference:  reference,
		Title:      path.Base(u.Path),
		ResolvedAt: d.now(),
	}, nil
}

// Auto resolves direct stream URLs itself and hands everything else to
// Fallback.
type Auto struct {
	Direct   *Direct
	Fallback Resolver
}

// NewAuto creates a resolver that short-circuits direct URLs.
func NewAuto(fallback Resolver) *Auto {
	return &Auto{Direct: NewDirect(), Fallback: fallback}
}

// Resolve implements Resolver.
func (a *Auto) Resolve(ctx context.Context, reference string) (Stream, error) {
	if IsDirect(reference) {
		return a.Direct.Resolve(ctx, reference)
	}
	return a.Fallback.Resolve(ctx, reference)
}

var (
	_ Resolver = (*Direct)(nil)
	_ Resolver = (*Auto)(nil)
)
