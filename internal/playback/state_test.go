// internal/playback/state_test.go
package playback

import (
	"errors"
	"testing"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateResolving, "Resolving"},
		{StatePreparing, "Preparing"},
		{StatePlaying, "Playing"},
		{StatePaused, "Paused"},
		{StateStopped, "Stopped"},
		{StateFailed, "Failed"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_Predicates(t *testing.T) {
	tests := []struct {
		state   State
		active  bool
		pending bool
	}{
		{StateIdle, false, false},
		{StateResolving, false, true},
		{StatePreparing, false, true},
		{StatePlaying, true, false},
		{StatePaused, true, false},
		{StateStopped, false, false},
		{StateFailed, false, false},
	}
	for _, tt := range tests {
		if got := tt.state.IsActive(); got != tt.active {
			t.Errorf("%v.IsActive() = %v, want %v", tt.state, got, tt.active)
		}
		if got := tt.state.IsPending(); got != tt.pending {
			t.Errorf("%v.IsPending() = %v, want %v", tt.state, got, tt.pending)
		}
		if got := tt.state.SinkVisible(); got != tt.active {
			t.Errorf("%v.SinkVisible() = %v, want %v", tt.state, got, tt.active)
		}
	}
}

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindConfiguration, "configuration"},
		{KindResolution, "resolution"},
		{KindPreparation, "preparation"},
		{KindRuntime, "runtime"},
		{ErrorKind(0), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestFailure_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	f := &Failure{Kind: KindRuntime, Message: "Failed to play stream: boom", Err: cause}

	if got, want := f.Error(), "runtime: Failed to play stream: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(f, cause) {
		t.Error("errors.Is(failure, cause) = false, want true")
	}

	var nilFailure *Failure
	if nilFailure.Error() != "" || nilFailure.Unwrap() != nil {
		t.Error("nil Failure should be empty")
	}
}
