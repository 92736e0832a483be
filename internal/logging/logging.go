// Package logging builds the zerolog loggers used across tubeplay.
//
// The terminal belongs to the UI, so logs always go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

// DefaultFile is the log path relative to the XDG state directory.
const DefaultFile = "tubeplay/tubeplay.log"

// Config captures logger options.
type Config struct {
	// File is the log path. Empty means $XDG_STATE_HOME/tubeplay/tubeplay.log.
	File string
	// Level is a zerolog level name ("debug", "info", ...). Empty or
	// unknown means info.
	Level string
}

// New returns a logger writing JSON lines to w.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// Open creates the log file named by cfg and returns a logger writing to
// it. The returned closer closes the file.
func Open(cfg Config) (zerolog.Logger, io.Closer, error) {
	path, err := resolvePath(cfg.File)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // path from user config
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, cfg.Level), f, nil
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str(FieldComponent, component).Logger()
}

func resolvePath(file string) (string, error) {
	if file != "" {
		return file, nil
	}
	path, err := xdg.StateFile(DefaultFile)
	if err != nil {
		return "", fmt.Errorf("resolve log path: %w", err)
	}
	return path, nil
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
