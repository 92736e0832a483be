package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMPVCommand is the mpv binary looked up on PATH.
const DefaultMPVCommand = "mpv"

const (
	commandTimeout = 5 * time.Second
	launchTimeout  = 10 * time.Second
)

// MPVOptions configures an MPV engine.
type MPVOptions struct {
	Command string
	Args    []string
	// Video opens a window for the render surface. Without it the engine is
	// audio only and Bind returns ErrNoVideo.
	Video bool
	// Volume is the initial level, 0 to 100. Zero keeps mpv's default.
	Volume int
}

// launchFunc starts an mpv process and returns a connection to its IPC
// socket and a function that reaps the process.
type launchFunc func(ctx context.Context, opts MPVOptions, out *Output) (net.Conn, func() error, error)

// MPV drives an external mpv process over its JSON IPC socket. The process
// is started on the first Prepare and reused for later streams.
type MPV struct {
	opts   MPVOptions
	logger zerolog.Logger
	launch launchFunc

	// loadMu orders loadfile and stop requests on the socket.
	loadMu sync.Mutex

	mu      sync.Mutex
	out     *Output
	conn    *ipcConn
	reap    func() error
	state   State
	pending *mpvLoad
	current *mpvLoad
	closed  bool
	wg      sync.WaitGroup
}

// mpvLoad tracks one Prepare through mpv's playlist.
type mpvLoad struct {
	entryID int64
	cb      Callbacks
	cancel  context.CancelFunc
}

// NewMPV creates an mpv engine.
func NewMPV(opts MPVOptions, logger zerolog.Logger) *MPV {
	if opts.Command == "" {
		opts.Command = DefaultMPVCommand
	}
	return &MPV{
		opts:   opts,
		logger: logger,
		launch: launchMPV,
		state:  Stopped,
	}
}

// Bind implements Engine. The output geometry is applied when mpv starts.
func (m *MPV) Bind(out Output) error {
	if !m.opts.Video {
		return ErrNoVideo
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.out = &out
	return nil
}

// Prepare implements Engine. The stream is loaded paused; Play unpauses it.
func (m *MPV) Prepare(uri string, cb Callbacks) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cb.fail(ErrClosed)
		return
	}
	prev := m.pending
	ctx, cancel := context.WithCancel(context.Background())
	load := &mpvLoad{cb: cb, cancel: cancel}
	m.pending = load
	m.current = nil
	m.state = Loading
	m.wg.Add(1)
	m.mu.Unlock()

	if prev != nil {
		prev.cancel()
		prev.cb.fail(ErrSuperseded)
	}

	go func() {
		defer m.wg.Done()
		defer cancel()
		if err := m.load(ctx, load, uri); err != nil {
			if m.takePending(load) {
				load.cb.fail(err)
			}
		}
	}()
}

// load sends the stream to mpv. Loads run one at a time, and a load that
// was superseded or stopped while waiting never reaches loadfile.
func (m *MPV) load(ctx context.Context, load *mpvLoad, uri string) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	conn, err := m.ensureRunning()
	if err != nil {
		return err
	}
	if !m.isPending(load) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if _, err := conn.Command(ctx, "set_property", "pause", true); err != nil {
		return err
	}
	if !m.isPending(load) {
		return nil
	}
	data, err := conn.Command(ctx, "loadfile", uri, "replace")
	if err != nil {
		return err
	}

	var reply struct {
		PlaylistEntryID int64 `json:"playlist_entry_id"`
	}
	if len(data) > 0 && json.Unmarshal(data, &reply) == nil {
		m.mu.Lock()
		load.entryID = reply.PlaylistEntryID
		m.mu.Unlock()
	}
	return nil
}

// ensureRunning returns the IPC connection, launching mpv if needed.
func (m *MPV) ensureRunning() (*ipcConn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.conn != nil {
		return m.conn, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), launchTimeout)
	defer cancel()
	raw, reap, err := m.launch(ctx, m.opts, m.out)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", m.opts.Command, err)
	}
	conn := newIPCConn(raw)
	m.conn = conn
	m.reap = reap
	m.wg.Add(1)
	go m.watch(conn)
	m.logger.Info().Str("command", m.opts.Command).Msg("mpv started")
	return conn, nil
}

// watch dispatches mpv events until the connection ends.
func (m *MPV) watch(conn *ipcConn) {
	defer m.wg.Done()
	for ev := range conn.Events() {
		m.handleEvent(ev)
	}

	m.mu.Lock()
	if m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	reap := m.reap
	m.reap = nil
	victim := m.pending
	if victim == nil {
		victim = m.current
	}
	m.pending, m.current = nil, nil
	m.state = Stopped
	closed := m.closed
	m.mu.Unlock()

	if reap != nil {
		if err := reap(); err != nil {
			m.logger.Debug().Err(err).Msg("mpv exited")
		}
	}
	if victim != nil && !closed {
		m.logger.Warn().Msg("mpv exited during playback")
		victim.cb.fail(ErrEngineExited)
	}
}

func (m *MPV) handleEvent(ev ipcEvent) {
	m.mu.Lock()
	var fire func()
	switch ev.Event {
	case "file-loaded":
		if p := m.pending; p != nil && matchesEntry(p, ev) {
			m.pending = nil
			m.current = p
			m.state = Ready
			fire = p.cb.prepared
		}
	case "end-file":
		switch ev.Reason {
		case "eof":
			if c := m.current; c != nil && matchesEntry(c, ev) {
				m.current = nil
				m.state = Stopped
				fire = c.cb.finished
			}
		case "error":
			err := fmt.Errorf("mpv: %s", ev.FileError)
			if p := m.pending; p != nil && matchesEntry(p, ev) {
				m.pending = nil
				m.state = Stopped
				fire = func() { p.cb.fail(err) }
			} else if c := m.current; c != nil && matchesEntry(c, ev) {
				m.current = nil
				m.state = Stopped
				fire = func() { c.cb.fail(err) }
			}
		}
	}
	m.mu.Unlock()

	m.logger.Debug().Str("event", ev.Event).Str("reason", ev.Reason).Msg("mpv event")
	if fire != nil {
		fire()
	}
}

// matchesEntry reports whether ev concerns load. Events or loads without a
// playlist entry id match anything.
func matchesEntry(load *mpvLoad, ev ipcEvent) bool {
	return load.entryID == 0 || ev.PlaylistEntryID == 0 || load.entryID == ev.PlaylistEntryID
}

func (m *MPV) isPending(load *mpvLoad) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending == load
}

// takePending clears load if it is still the pending Prepare.
func (m *MPV) takePending(load *mpvLoad) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != load {
		return false
	}
	m.pending = nil
	m.state = Stopped
	return true
}

// Play implements Engine.
func (m *MPV) Play() error {
	m.mu.Lock()
	if !m.state.CanPlay() || m.conn == nil {
		m.mu.Unlock()
		return ErrNotPrepared
	}
	conn := m.conn
	m.mu.Unlock()

	if err := m.setPause(conn, false); err != nil {
		return err
	}
	m.setState(Playing)
	return nil
}

// Pause implements Engine.
func (m *MPV) Pause() error {
	m.mu.Lock()
	if !m.state.CanPause() || m.conn == nil {
		m.mu.Unlock()
		return nil
	}
	conn := m.conn
	m.mu.Unlock()

	if err := m.setPause(conn, true); err != nil {
		return err
	}
	m.setState(Paused)
	return nil
}

func (m *MPV) setPause(conn *ipcConn, paused bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	_, err := conn.Command(ctx, "set_property", "pause", paused)
	return err
}

func (m *MPV) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.state = s
	}
}

// Stop implements Engine.
func (m *MPV) Stop() error {
	m.mu.Lock()
	prev := m.pending
	m.pending, m.current = nil, nil
	m.state = Stopped
	conn := m.conn
	m.mu.Unlock()

	if prev != nil {
		prev.cancel()
		prev.cb.fail(ErrSuperseded)
	}

	// Waits for an in-flight load so its loadfile cannot land after stop.
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	if conn == nil {
		m.mu.Lock()
		conn = m.conn
		m.mu.Unlock()
	}
	if conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := conn.Command(ctx, "stop"); err != nil && !errors.Is(err, errIPCClosed) {
		return err
	}
	return nil
}

// Close implements Engine. It asks mpv to quit and waits for it.
func (m *MPV) Close() error {
	if err := m.Stop(); err != nil {
		m.logger.Debug().Err(err).Msg("stop before close")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conn := m.conn
	m.mu.Unlock()

	if conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		_, _ = conn.Command(ctx, "quit")
		cancel()
		_ = conn.Close()
	}
	m.wg.Wait()
	return nil
}

// State returns the engine state.
func (m *MPV) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

var _ Engine = (*MPV)(nil)
