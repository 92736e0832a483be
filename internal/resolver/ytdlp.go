package resolver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultYtDlpCommand is the resolution tool looked up in PATH.
	DefaultYtDlpCommand = "yt-dlp"
	// DefaultFormat selects a single progressive stream carrying both audio
	// and video so that one URI is enough to play it.
	DefaultFormat = "best[vcodec!=none][acodec!=none]/best"

	// waitDelay bounds how long a killed tool may hold its output pipes.
	waitDelay = 2 * time.Second
)

// YtDlp resolves references by running the yt-dlp command line tool.
type YtDlp struct {
	command string
	format  string
	args    []string
	now     func() time.Time
}

// NewYtDlp creates a yt-dlp resolver. Empty command and format fall back to
// DefaultYtDlpCommand and DefaultFormat.
func NewYtDlp(command, format string, args []string) *YtDlp {
	if command == "" {
		command = DefaultYtDlpCommand
	}
	if format == "" {
		format = DefaultFormat
	}
	return &YtDlp{
		command: command,
		format:  format,
		args:    append([]string(nil), args...),
		now:     time.Now,
	}
}

// Command returns the configured tool.
func (y *YtDlp) Command() string {
	return y.command
}

// Resolve runs yt-dlp and returns the first printed stream URL.
func (y *YtDlp) Resolve(ctx context.Context, reference string) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return Stream{}, wrapContext(reference, err)
	}

	path, err := exec.LookPath(y.command)
	if err != nil {
		return Stream{}, &Error{Reference: reference, Reason: ReasonUnavailable, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, y.buildArgs(reference)...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Stream{}, wrapContext(reference, ctxErr)
		}
		return Stream{}, &Error{
			Reference: reference,
			Reason:    classifyStderr(stderr.String()),
			Err:       fmt.Errorf("%s: %w: %s", y.command, err, lastLine(stderr.String())),
		}
	}

	title, uri := parseOutput(stdout.String())
	if uri == "" {
		return Stream{}, &Error{Reference: reference, Reason: ReasonEmpty, Err: ErrNoStream}
	}

	return Stream{
		URI:        uri,
		Reference:  reference,
		Title:      title,
		ResolvedAt: y.now(),
	}, nil
}

func (y *YtDlp) buildArgs(reference string) []string {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--format", y.format,
		"--print", "title",
		"--print", "urls",
	}
	args = append(args, y.args...)
	// "--" keeps references starting with a dash from being read as flags
	return append(args, "--", reference)
}

// parseOutput splits yt-dlp output into the title line and the first URL.
// A single line of output is treated as a bare URL.
func parseOutput(out string) (title, uri string) {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	for i, line := range lines {
		if looksLikeURL(line) {
			if i > 0 {
				title = lines[0]
			}
			return title, line
		}
	}
	return "", ""
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "file://")
}

// stderrReasons maps yt-dlp error fragments to reasons, checked in order.
var stderrReasons = []struct {
	fragment string
	reason   Reason
}{
	{"private video", ReasonInvalid},
	{"unsupported url", ReasonInvalid},
	{"is not a valid url", ReasonInvalid},
	{"video unavailable", ReasonInvalid},
	{"sign in to confirm", ReasonInvalid},
	{"requested format is not available", ReasonEmpty},
	{"no video formats found", ReasonEmpty},
	{"unable to download", ReasonUnavailable},
	{"http error", ReasonUnavailable},
	{"name or service not known", ReasonUnavailable},
	{"temporary failure in name resolution", ReasonUnavailable},
	{"connection refused", ReasonUnavailable},
	{"timed out", ReasonUnavailable},
}

func classifyStderr(stderr string) Reason {
	lower := strings.ToLower(stderr)
	for _, sr := range stderrReasons {
		if strings.Contains(lower, sr.fragment) {
			return sr.reason
		}
	}
	return ReasonInvalid
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimPrefix(s, "ERROR: ")
}

// Verify YtDlp implements Resolver at compile time.
var _ Resolver = (*YtDlp)(nil)

