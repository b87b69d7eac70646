package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JohnDeved/mediaseek/internal/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"runtime", errors.New("connection refused"), exitError},
		{"missing url", fmt.Errorf("startup: %w", config.ErrMissingBaseURL), exitConfig},
		{"invalid url", config.ErrInvalidBaseURL, exitConfig},
		{"bad config file", &configError{errors.New("reading config.json: unexpected EOF")}, exitConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"search"}, {"details"}, {"files"}, {"history"}, {"history", "clear"}, {"config"}, {"config", "set-url"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Errorf("command %v not registered: %v", path, err)
		}
	}
}
