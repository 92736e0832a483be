package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// ipcEvent is an asynchronous message from mpv's JSON IPC.
type ipcEvent struct {
	Event           string `json:"event"`
	Reason          string `json:"reason,omitempty"`
	FileError       string `json:"file_error,omitempty"`
	PlaylistEntryID int64  `json:"playlist_entry_id,omitempty"`
}

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type ipcReply struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
}

// ipcConn is a client for mpv's line-delimited JSON IPC protocol.
type ipcConn struct {
	conn net.Conn

	writeMu sync.Mutex
	enc     *json.Encoder

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan ipcReply
	err     error

	events    chan ipcEvent
	quit      chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// ipcEventBuffer bounds events queued ahead of the consumer.
const ipcEventBuffer = 64

var errIPCClosed = errors.New("mpv ipc closed")

func newIPCConn(conn net.Conn) *ipcConn {
	c := &ipcConn{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		pending: make(map[int64]chan ipcReply),
		events:  make(chan ipcEvent, ipcEventBuffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Events delivers mpv events in order. It is closed when the connection ends.
func (c *ipcConn) Events() <-chan ipcEvent {
	return c.events
}

// Done is closed when the connection ends.
func (c *ipcConn) Done() <-chan struct{} {
	return c.done
}

// Command sends a command and waits for mpv's reply.
func (c *ipcConn) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	ch := make(chan ipcReply, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	err := c.enc.Encode(ipcRequest{Command: args, RequestID: id})
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("mpv %v: %w", args[0], err)
	}

	select {
	case r := <-ch:
		if r.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], r.Error)
		}
		return r.Data, nil
	case <-c.done:
		return nil, errIPCClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the connection and waits for the reader to exit.
func (c *ipcConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.quit)
		err = c.conn.Close()
	})
	<-c.done
	return err
}

func (c *ipcConn) readLoop() {
	defer func() {
		c.mu.Lock()
		if c.err == nil {
			c.err = errIPCClosed
		}
		c.mu.Unlock()
		close(c.events)
		close(c.done)
	}()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()

		var r ipcReply
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		if r.Event != "" {
			var ev ipcEvent
			if err := json.Unmarshal(line, &ev); err == nil {
				select {
				case c.events <- ev:
				case <-c.quit:
					return
				}
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[r.RequestID]
		c.mu.Unlock()
		if ok {
			ch <- r
		}
	}
}
