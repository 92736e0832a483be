//nolint:goconst // test cases intentionally repeat strings for readability
package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes an executable shell script standing in for yt-dlp.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o700); err != nil { //nolint:gosec // test helper must be executable
		t.Fatal(err)
	}
	return path
}

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		wantTitle string
		wantURI   string
	}{
		{
			name:      "title then url",
			out:       "Some Video\nhttps://cdn.example/v.mp4\n",
			wantTitle: "Some Video",
			wantURI:   "https://cdn.example/v.mp4",
		},
		{
			name:    "bare url",
			out:     "https://cdn.example/v.mp4\n",
			wantURI: "https://cdn.example/v.mp4",
		},
		{
			name:      "first of several urls",
			out:       "Split\nhttps://cdn.example/video\nhttps://cdn.example/audio\n",
			wantTitle: "Split",
			wantURI:   "https://cdn.example/video",
		},
		{
			name: "blank output",
			out:  "\n\n",
		},
		{
			name: "title without url",
			out:  "Only a title\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, uri := parseOutput(tt.out)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantURI, uri)
		})
	}
}

func TestClassifyStderr(t *testing.T) {
	tests := []struct {
		stderr string
		want   Reason
	}{
		{"ERROR: [youtube] abc: Private video. Sign in if you've been granted access", ReasonInvalid},
		{"ERROR: Unsupported URL: https://example.com", ReasonInvalid},
		{"ERROR: 'bad-url' is not a valid URL.", ReasonInvalid},
		{"ERROR: [youtube] abc: Requested format is not available", ReasonEmpty},
		{"ERROR: Unable to download webpage: <urlopen error [Errno -2] Name or service not known>", ReasonUnavailable},
		{"ERROR: HTTP Error 503: Service Unavailable", ReasonUnavailable},
		{"something unexpected", ReasonInvalid},
	}
	for _, tt := range tests {
		if got := classifyStderr(tt.stderr); got != tt.want {
			t.Errorf("classifyStderr(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
	}
}

func TestYtDlp_BuildArgs(t *testing.T) {
	y := NewYtDlp("", "", []string{"--cookies", "c.txt"})

	args := y.buildArgs("-dash-start")

	assert.Equal(t, DefaultYtDlpCommand, y.Command())
	assert.Equal(t, []string{
		"--no-playlist",
		"--no-warnings",
		"--format", DefaultFormat,
		"--print", "title",
		"--print", "urls",
		"--cookies", "c.txt",
		"--", "-dash-start",
	}, args)
}

func TestYtDlp_Resolve_Success(t *testing.T) {
	tool := fakeTool(t, `printf 'A Title\nhttps://cdn.example/stream.mp4\n'`)
	y := NewYtDlp(tool, "", nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	y.now = func() time.Time { return fixed }

	s, err := y.Resolve(context.Background(), "https://youtu.be/abc")

	require.NoError(t, err)
	assert.Equal(t, Stream{
		URI:        "https://cdn.example/stream.mp4",
		Reference:  "https://youtu.be/abc",
		Title:      "A Title",
		ResolvedAt: fixed,
	}, s)
}

func TestYtDlp_Resolve_EmptyOutput(t *testing.T) {
	tool := fakeTool(t, `exit 0`)
	y := NewYtDlp(tool, "", nil)

	_, err := y.Resolve(context.Background(), "https://youtu.be/abc")

	require.Error(t, err)
	assert.True(t, IsReason(err, ReasonEmpty))
	assert.ErrorIs(t, err, ErrNoStream)
}

func TestYtDlp_Resolve_ToolFailure(t *testing.T) {
	tool := fakeTool(t, `echo "ERROR: 'bad-url' is not a valid URL." >&2; exit 1`)
	y := NewYtDlp(tool, "", nil)

	_, err := y.Resolve(context.Background(), "bad-url")

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ReasonInvalid, rerr.Reason)
	assert.Equal(t, "bad-url", rerr.Reference)
	assert.Contains(t, rerr.Error(), "is not a valid URL")
}

func TestYtDlp_Resolve_MissingTool(t *testing.T) {
	y := NewYtDlp(filepath.Join(t.TempDir(), "does-not-exist"), "", nil)

	_, err := y.Resolve(context.Background(), "https://youtu.be/abc")

	assert.True(t, IsReason(err, ReasonUnavailable), "err = %v", err)
}

func TestYtDlp_Resolve_Canceled(t *testing.T) {
	tool := fakeTool(t, `exec sleep 10`)
	y := NewYtDlp(tool, "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := y.Resolve(ctx, "https://youtu.be/abc")

	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestYtDlp_Resolve_AlreadyCanceled(t *testing.T) {
	y := NewYtDlp("yt-dlp", "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := y.Resolve(ctx, "x")

	assert.True(t, IsReason(err, ReasonCanceled))
}
