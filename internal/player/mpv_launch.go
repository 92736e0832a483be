//go:build !windows

package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

const (
	dialInterval = 50 * time.Millisecond
	reapTimeout  = 3 * time.Second
)

// launchMPV starts mpv in idle mode with an IPC socket under the XDG
// runtime directory and dials it.
func launchMPV(ctx context.Context, opts MPVOptions, out *Output) (net.Conn, func() error, error) {
	path, err := exec.LookPath(opts.Command)
	if err != nil {
		return nil, nil, err
	}
	socket, err := xdg.RuntimeFile("tubeplay/mpv-" + strconv.Itoa(os.Getpid()) + ".sock")
	if err != nil {
		return nil, nil, fmt.Errorf("ipc socket path: %w", err)
	}
	_ = os.Remove(socket)

	cmd := exec.Command(path, mpvArgs(opts, out, socket)...) //nolint:gosec // command comes from user config
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	reap := func() error {
		defer os.Remove(socket)
		select {
		case err := <-exited:
			return err
		case <-time.After(reapTimeout):
			_ = cmd.Process.Kill()
			return <-exited
		}
	}

	conn, err := dialSocket(ctx, socket, exited)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = reap()
		return nil, nil, err
	}
	return conn, reap, nil
}

// dialSocket retries until mpv has created its socket.
func dialSocket(ctx context.Context, socket string, exited <-chan error) (net.Conn, error) {
	var d net.Dialer
	ticker := time.NewTicker(dialInterval)
	defer ticker.Stop()
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to mpv: %w", ctx.Err())
		case err := <-exited:
			if err == nil {
				err = errors.New("exited early")
			}
			return nil, fmt.Errorf("mpv: %w", err)
		case <-ticker.C:
		}
	}
}
