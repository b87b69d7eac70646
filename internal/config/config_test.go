package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config dir at a temp dir and clears backend env vars.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MEDIASEEK_CONFIG_DIR", dir)
	t.Setenv("SERVER_URL", "")
	t.Setenv("MEDIASEEK_BASE_URL", "")
	t.Setenv("MEDIASEEK_QUERY_WIDTH", "")
	t.Setenv("MEDIASEEK_REQUEST_TIMEOUT", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.BaseURL)
	assert.Equal(t, 5.0, cfg.RequestsPerSecond)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 50, cfg.QueryWidth)
	assert.True(t, cfg.HistoryEnabled)
	assert.False(t, cfg.Debug)

	assert.True(t, errors.Is(cfg.Validate(), ErrMissingBaseURL))
}

func TestLoad_ServerURLEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_URL", " http://localhost:8080 ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedEnvWinsOverServerURL(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_URL", "http://legacy:1")
	t.Setenv("MEDIASEEK_BASE_URL", "https://catalog.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.example", cfg.BaseURL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	data := `{"base_url":"http://from-file","query_width":30,"request_timeout":"5s","debug":true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", cfg.BaseURL)
	assert.Equal(t, 30, cfg.QueryWidth)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Debug)

	t.Setenv("MEDIASEEK_QUERY_WIDTH", "12")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.QueryWidth)
}

func TestLoad_BadFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		url  string
		want error
	}{
		{"", ErrMissingBaseURL},
		{"localhost:8080", ErrInvalidBaseURL},
		{"ftp://example.com", ErrInvalidBaseURL},
		{"http://", ErrInvalidBaseURL},
		{"http://example.com/api", nil},
		{"https://example.com", nil},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.BaseURL = tt.url
		err := cfg.Validate()
		if tt.want == nil {
			assert.NoError(t, err, tt.url)
			continue
		}
		assert.True(t, errors.Is(err, tt.want), "url %q: got %v", tt.url, err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.BaseURL = "http://saved"
	cfg.QueryWidth = 40
	cfg.RequestTimeout = 12 * time.Second
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://saved", loaded.BaseURL)
	assert.Equal(t, 40, loaded.QueryWidth)
	assert.Equal(t, 12*time.Second, loaded.RequestTimeout)
}

func TestPaths(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "history.db"), DBPath())
	assert.Equal(t, filepath.Join(dir, "config.json"), ConfigPath())
	assert.Equal(t, filepath.Join(dir, "mediaseek.log"), LogPath())
}
