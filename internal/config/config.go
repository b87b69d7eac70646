package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JohnDeved/mediaseek/internal/textfield"
)

var (
	// ErrMissingBaseURL means no backend address was configured.
	ErrMissingBaseURL = errors.New("backend base URL is not set (set SERVER_URL or base_url in the config file)")
	// ErrInvalidBaseURL means the backend address is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("backend base URL must be an absolute http(s) URL")
)

func homeDirOrFallback() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

// Config holds all user-configurable settings.
type Config struct {
	// BaseURL is the catalog backend address. Required.
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	// RequestsPerSecond rate-limits catalog requests.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second"`
	// RequestTimeout bounds a single catalog request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout"`
	// QueryWidth is the maximum query length and the width of the query field.
	QueryWidth int `mapstructure:"query_width" json:"query_width"`
	// HistoryEnabled controls the local search journal.
	HistoryEnabled bool `mapstructure:"history_enabled" json:"history_enabled"`
	// Debug turns on the session log file.
	Debug bool `mapstructure:"debug" json:"debug"`
}

// DefaultConfig returns sensible defaults. BaseURL has no default.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerSecond: 5.0,
		RequestTimeout:    30 * time.Second,
		QueryWidth:        textfield.DefaultLimit,
		HistoryEnabled:    true,
	}
}

// ConfigDir returns the directory where config and data files are stored.
func ConfigDir() string {
	if dir := os.Getenv("MEDIASEEK_CONFIG_DIR"); dir != "" {
		return dir
	}
	home := homeDirOrFallback()
	return filepath.Join(home, ".config", "mediaseek")
}

// DBPath returns the path to the history database.
func DBPath() string {
	return filepath.Join(ConfigDir(), "history.db")
}

// LogPath returns the path to the debug log.
func LogPath() string {
	return filepath.Join(ConfigDir(), "mediaseek.log")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load resolves the configuration from defaults, the config file, a .env file
// in the working directory and the environment, in increasing precedence.
// It does not validate; call Validate before talking to the backend.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("base_url", "")
	v.SetDefault("requests_per_second", def.RequestsPerSecond)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("query_width", def.QueryWidth)
	v.SetDefault("history_enabled", def.HistoryEnabled)
	v.SetDefault("debug", def.Debug)

	v.SetEnvPrefix("MEDIASEEK")
	v.AutomaticEnv()
	// SERVER_URL is the historical name of the setting.
	if err := v.BindEnv("base_url", "MEDIASEEK_BASE_URL", "SERVER_URL"); err != nil {
		return nil, err
	}

	v.SetConfigType("json")
	v.SetConfigFile(ConfigPath())
	if _, err := os.Stat(ConfigPath()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", ConfigPath(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.QueryWidth <= 0 {
		cfg.QueryWidth = def.QueryWidth
	}
	return cfg, nil
}

// Validate reports whether the configuration can reach a backend.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("base_url", c.BaseURL)
	v.Set("requests_per_second", c.RequestsPerSecond)
	v.Set("request_timeout", c.RequestTimeout.String())
	v.Set("query_width", c.QueryWidth)
	v.Set("history_enabled", c.HistoryEnabled)
	v.Set("debug", c.Debug)
	return v.WriteConfigAs(ConfigPath())
}
