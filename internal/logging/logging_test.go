package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(&stdout, &stderr, Options{Level: slog.LevelInfo}))

	logger.Debug("hidden")
	logger.Info("brand created", "id", "b1")
	logger.Warn("failed to remove photo")
	logger.Error("storage failure")

	out := stdout.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "brand created") || !strings.Contains(out, "failed to remove photo") {
		t.Errorf("expected info and warn on stdout, got %q", out)
	}
	if strings.Contains(out, "storage failure") {
		t.Error("error record should not go to stdout")
	}
	if !strings.Contains(stderr.String(), "storage failure") {
		t.Errorf("expected error on stderr, got %q", stderr.String())
	}
}

func TestWithAttrsKeepsRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(&stdout, &stderr, Options{Level: slog.LevelDebug})).With("kind", "item")

	logger.Debug("mutation finished")
	logger.Error("mutation failed")

	if !strings.Contains(stdout.String(), "kind=item") {
		t.Errorf("expected attrs on stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "kind=item") {
		t.Errorf("expected attrs on stderr, got %q", stderr.String())
	}
}

func TestPrettyWritesToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(&stdout, &stderr, Options{Level: slog.LevelInfo, Pretty: true}))

	logger.Info("server started")

	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "server started") {
		t.Errorf("expected record on stderr, got %q", stderr.String())
	}
}

func TestSetupLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "katalog.log")
	cleanup, err := Setup(Options{Level: slog.LevelInfo, Path: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	slog.Info("written to file")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("expected record in log file, got %q", data)
	}
}
