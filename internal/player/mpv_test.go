package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMPV answers IPC requests the way mpv does.
type fakeMPV struct {
	conn net.Conn

	mu       sync.Mutex
	commands [][]any
	entry    int64
	// loadError makes loadfile fail asynchronously with this file_error.
	loadError string
	// hold delays the reply to the first "pause" request until it is closed.
	hold    chan struct{}
	held    bool
	writeMu sync.Mutex
}

func (f *fakeMPV) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req ipcRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		loadErr := f.loadError
		f.mu.Unlock()

		reply := map[string]any{"error": "success", "request_id": req.RequestID}
		if f.holdReply(req.Command) {
			go func() {
				<-f.hold
				f.send(reply)
			}()
			continue
		}
		isLoad := len(req.Command) > 0 && req.Command[0] == "loadfile"
		var entry int64
		if isLoad {
			f.mu.Lock()
			f.entry++
			entry = f.entry
			f.mu.Unlock()
			reply["data"] = map[string]any{"playlist_entry_id": entry}
		}
		f.send(reply)

		if isLoad {
			if loadErr != "" {
				f.send(map[string]any{"event": "end-file", "reason": "error", "file_error": loadErr, "playlist_entry_id": entry})
			} else {
				f.send(map[string]any{"event": "start-file", "playlist_entry_id": entry})
				f.send(map[string]any{"event": "file-loaded"})
			}
		}
	}
}

func (f *fakeMPV) holdReply(cmd []any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hold == nil || f.held || len(cmd) != 3 || cmd[0] != "set_property" || cmd[2] != true {
		return false
	}
	f.held = true
	return true
}

// loads returns the uris passed to loadfile, in order.
func (f *fakeMPV) loads() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var uris []any
	for _, c := range f.commands {
		if len(c) > 1 && c[0] == "loadfile" {
			uris = append(uris, c[1])
		}
	}
	return uris
}

func (f *fakeMPV) send(v any) {
	b, _ := json.Marshal(v)
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_, _ = f.conn.Write(append(b, '\n'))
}

func (f *fakeMPV) endFile(reason, fileError string) {
	f.mu.Lock()
	entry := f.entry
	f.mu.Unlock()
	f.send(map[string]any{"event": "end-file", "reason": reason, "file_error": fileError, "playlist_entry_id": entry})
}

func (f *fakeMPV) sawCommand(name string, args ...any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.commands {
		if len(c) != len(args)+1 || c[0] != name {
			continue
		}
		match := true
		for i, a := range args {
			if c[i+1] != a {
				match = false
			}
		}
		if match {
			return true
		}
	}
	return false
}

// newTestMPV returns an engine whose launcher connects to a fakeMPV.
func newTestMPV(t *testing.T, video bool) (*MPV, *fakeMPV) {
	t.Helper()
	fake := &fakeMPV{}
	m := NewMPV(MPVOptions{Video: video}, zerolog.Nop())
	m.launch = func(_ context.Context, _ MPVOptions, _ *Output) (net.Conn, func() error, error) {
		client, server := net.Pipe()
		fake.conn = server
		go fake.serve()
		return client, func() error { return nil }, nil
	}
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m, fake
}

func TestMPV_BindRequiresVideo(t *testing.T) {
	audioOnly := NewMPV(MPVOptions{}, zerolog.Nop())
	assert.ErrorIs(t, audioOnly.Bind(Output{Width: 1, Height: 1}), ErrNoVideo)

	video := NewMPV(MPVOptions{Video: true}, zerolog.Nop())
	require.NoError(t, video.Bind(Output{Width: 1280, Height: 720}))
	assert.Equal(t, &Output{Width: 1280, Height: 720}, video.out)
}

func TestMPV_PrepareAndPlay(t *testing.T) {
	m, fake := newTestMPV(t, true)
	o := newOutcome()

	m.Prepare("https://cdn.example/v.mp4", o.callbacks())
	o.waitPrepared(t)

	assert.Equal(t, Ready, m.State())
	assert.True(t, fake.sawCommand("set_property", "pause", true))
	assert.True(t, fake.sawCommand("loadfile", "https://cdn.example/v.mp4", "replace"))

	require.NoError(t, m.Play())
	assert.Equal(t, Playing, m.State())
	assert.True(t, fake.sawCommand("set_property", "pause", false))

	require.NoError(t, m.Pause())
	assert.Equal(t, Paused, m.State())

	require.NoError(t, m.Play())
	assert.Equal(t, Playing, m.State())
}

func TestMPV_PlayBeforePrepared(t *testing.T) {
	m, _ := newTestMPV(t, false)
	assert.ErrorIs(t, m.Play(), ErrNotPrepared)
}

func TestMPV_LoadError(t *testing.T) {
	m, fake := newTestMPV(t, false)
	fake.loadError = "unrecognized file format"
	o := newOutcome()

	m.Prepare("https://cdn.example/bad", o.callbacks())

	err := o.waitError(t)
	assert.Contains(t, err.Error(), "unrecognized file format")
	assert.Equal(t, Stopped, m.State())
	o.assertQuiet(t)
}

func TestMPV_EndOfFile(t *testing.T) {
	m, fake := newTestMPV(t, false)
	o := newOutcome()
	m.Prepare("https://cdn.example/v.mp4", o.callbacks())
	o.waitPrepared(t)
	require.NoError(t, m.Play())

	fake.endFile("eof", "")

	select {
	case <-o.finished:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Finished")
	}
	assert.Equal(t, Stopped, m.State())
}

func TestMPV_RuntimeError(t *testing.T) {
	m, fake := newTestMPV(t, false)
	o := newOutcome()
	m.Prepare("https://cdn.example/v.mp4", o.callbacks())
	o.waitPrepared(t)
	require.NoError(t, m.Play())

	fake.endFile("error", "network timeout")

	err := o.waitError(t)
	assert.Contains(t, err.Error(), "network timeout")
}

func TestMPV_StopIgnoresStopEvent(t *testing.T) {
	m, fake := newTestMPV(t, false)
	o := newOutcome()
	m.Prepare("https://cdn.example/v.mp4", o.callbacks())
	o.waitPrepared(t)

	require.NoError(t, m.Stop())
	fake.endFile("stop", "")

	assert.True(t, fake.sawCommand("stop"))
	assert.Equal(t, Stopped, m.State())
	o.assertQuiet(t)
}

func TestMPV_StopBeforeLoadfile(t *testing.T) {
	m, fake := newTestMPV(t, false)
	fake.hold = make(chan struct{})
	defer close(fake.hold)
	first, second := newOutcome(), newOutcome()

	m.Prepare("https://cdn.example/a.mp4", first.callbacks())
	require.Eventually(t, func() bool {
		return fake.sawCommand("set_property", "pause", true)
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.ErrorIs(t, first.waitError(t), ErrSuperseded)

	m.Prepare("https://cdn.example/b.mp4", second.callbacks())
	second.waitPrepared(t)

	assert.Equal(t, []any{"https://cdn.example/b.mp4"}, fake.loads())
	assert.Equal(t, Ready, m.State())
	first.assertQuiet(t)
}

func TestMPV_SupersededLoadIsDropped(t *testing.T) {
	m, fake := newTestMPV(t, false)
	fake.hold = make(chan struct{})
	defer close(fake.hold)
	first, second := newOutcome(), newOutcome()

	m.Prepare("https://cdn.example/a.mp4", first.callbacks())
	require.Eventually(t, func() bool {
		return fake.sawCommand("set_property", "pause", true)
	}, 5*time.Second, 5*time.Millisecond)
	m.Prepare("https://cdn.example/b.mp4", second.callbacks())

	assert.ErrorIs(t, first.waitError(t), ErrSuperseded)
	second.waitPrepared(t)
	assert.Equal(t, []any{"https://cdn.example/b.mp4"}, fake.loads())
}

func TestMPV_ProcessExit(t *testing.T) {
	m, fake := newTestMPV(t, false)
	o := newOutcome()
	m.Prepare("https://cdn.example/v.mp4", o.callbacks())
	o.waitPrepared(t)

	_ = fake.conn.Close()

	assert.ErrorIs(t, o.waitError(t), ErrEngineExited)
	assert.Eventually(t, func() bool { return m.State() == Stopped }, time.Second, 5*time.Millisecond)
}

func TestMPVArgs(t *testing.T) {
	args := mpvArgs(
		MPVOptions{Video: true, Volume: 150, Args: []string{"--hwdec=auto"}},
		&Output{Width: 1280, Height: 720, Title: "tubeplay"},
		"/run/tubeplay/mpv.sock",
	)

	assert.Contains(t, args, "--input-ipc-server=/run/tubeplay/mpv.sock")
	assert.Contains(t, args, "--geometry=1280x720")
	assert.Contains(t, args, "--title=tubeplay")
	assert.Contains(t, args, "--volume=100")
	assert.NotContains(t, args, "--video=no")
	assert.Equal(t, "--hwdec=auto", args[len(args)-1])

	audio := mpvArgs(MPVOptions{}, nil, "/tmp/s")
	assert.Contains(t, audio, "--video=no")
}
