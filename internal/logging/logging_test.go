package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenDebugWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.log")
	logger, closer, err := Open(path, true)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	logger.Info("fetch started", "kind", "search")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "fetch started") || !strings.Contains(string(data), "kind=search") {
		t.Fatalf("unexpected log contents: %s", data)
	}
}

func TestOpenWithoutDebugCreatesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	logger, closer, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	logger.Info("dropped")
	_ = closer.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no log file, stat err=%v", err)
	}
}
