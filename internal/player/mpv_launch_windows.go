//go:build windows

package player

import (
	"context"
	"errors"
	"net"
)

// launchMPV is unavailable on Windows, where mpv serves IPC on a named pipe.
func launchMPV(context.Context, MPVOptions, *Output) (net.Conn, func() error, error) {
	return nil, nil, errors.New("mpv backend is not supported on windows")
}
