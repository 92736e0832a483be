// Package resolver turns user-facing media references into directly
// streamable URIs.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Stream is a directly playable URI plus the reference it was derived from.
// Streams are values and are never modified after Resolve returns them.
type Stream struct {
	URI        string
	Reference  string
	Title      string
	ResolvedAt time.Time
}

// Resolver resolves a media reference into a Stream.
//
// Implementations must report every failure through the returned error
// (as *Error) and must honor ctx cancellation. The reference is never empty:
// callers reject blank input before calling Resolve.
type Resolver interface {
	Resolve(ctx context.Context, reference string) (Stream, error)
}

// Func adapts a function to the Resolver interface.
type Func func(ctx context.Context, reference string) (Stream, error)

// Resolve calls f.
func (f Func) Resolve(ctx context.Context, reference string) (Stream, error) {
	return f(ctx, reference)
}

// Reason classifies a resolution failure.
type Reason int

const (
	// ReasonUnavailable means the resolution service could not be reached
	// or the resolution tool is missing.
	ReasonUnavailable Reason = iota + 1
	// ReasonInvalid means the reference is invalid, private or unsupported.
	ReasonInvalid
	// ReasonEmpty means resolution succeeded but yielded no playable stream.
	ReasonEmpty
	// ReasonCanceled means the caller abandoned the resolution.
	ReasonCanceled
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonUnavailable:
		return "unavailable"
	case ReasonInvalid:
		return "invalid"
	case ReasonEmpty:
		return "empty"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ErrNoStream is wrapped by errors with ReasonEmpty.
var ErrNoStream = errors.New("no playable stream")

// Error is returned by resolvers for every failure.
type Error struct {
	Reference string
	Reason    Reason
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolve %q: %s", e.Reference, e.Reason)
	}
	return fmt.Sprintf("resolve %q: %s: %v", e.Reference, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on context cancellation.
func (e *Error) Is(target error) bool {
	return e.Reason == ReasonCanceled && target == context.Canceled
}

// IsReason reports whether err is a resolution *Error with the given reason.
func IsReason(err error, reason Reason) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Reason == reason
	}
	return false
}

// wrapContext converts a context error into a canceled resolution error.
func wrapContext(reference string, err error) error {
	return &Error{Reference: reference, Reason: ReasonCanceled, Err: err}
}
