package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate runs the command in an empty directory with no user config.
func isolate(t *testing.T, config string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	if config != "" {
		if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(config), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun_DirectURL(t *testing.T) {
	isolate(t, "")
	var stdout, stderr bytes.Buffer

	code := run([]string{"https://cdn.example/clip.mp4"}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if got := stdout.String(); got != "https://cdn.example/clip.mp4\n" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.Contains(stderr.String(), "resolved") {
		t.Errorf("stderr = %q, want a resolved log line", stderr.String())
	}
}

func TestRun_MissingResolverIsLogged(t *testing.T) {
	isolate(t, "[resolver]\ncommand = \"/nonexistent/yt-dlp\"\n")
	var stdout, stderr bytes.Buffer

	code := run([]string{"https://www.youtube.com/watch?v=aaaaaaaaaaa"}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	for _, want := range []string{"resolution failed", "https://www.youtube.com/watch?v=aaaaaaaaaaa"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr = %q, missing %q", stderr.String(), want)
		}
	}
}

func TestRun_Usage(t *testing.T) {
	isolate(t, "")
	var stdout, stderr bytes.Buffer

	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "usage: resolve") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
