// Package config loads and saves dayline's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all dayline configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Timeline TimelineConfig `toml:"timeline"`
	Daemon   DaemonConfig   `toml:"daemon"`
	Remote   RemoteConfig   `toml:"remote"`
	Log      LogConfig      `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	UserID      string `toml:"user_id"`
	DBPath      string `toml:"db_path,omitempty"`
	DefaultDays int    `toml:"default_days"`
	Timezone    string `toml:"timezone,omitempty"`
}

// TimelineConfig tunes the timeline aggregator.
type TimelineConfig struct {
	CollaboratorTimeoutMs int               `toml:"collaborator_timeout_ms"`
	DueSoonDays           int               `toml:"due_soon_days"`
	Colors                map[string]string `toml:"colors,omitempty"`
}

// DaemonConfig holds background daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Schedule     string `toml:"schedule"`
	EventsBuffer int    `toml:"events_buffer"`
}

// RemoteConfig points shift and appointment reads at an external service.
type RemoteConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Token   string `toml:"token,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			UserID:      "me",
			DefaultDays: 14,
		},
		Timeline: TimelineConfig{
			CollaboratorTimeoutMs: 3000,
			DueSoonDays:           5,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			Schedule:     "@every 30s",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dayline")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dayline")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	if c.General.DefaultDays < 1 {
		return fmt.Errorf("config: general.default_days must be at least 1, got %d", c.General.DefaultDays)
	}
	if c.Timeline.CollaboratorTimeoutMs < 0 {
		return fmt.Errorf("config: timeline.collaborator_timeout_ms must not be negative")
	}
	if c.Timeline.DueSoonDays < 0 {
		return fmt.Errorf("config: timeline.due_soon_days must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the configured time zone, or time.Local when unset.
func (c Config) Location() (*time.Location, error) {
	if c.General.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: general.timezone: %w", err)
	}
	return loc, nil
}

// CollaboratorTimeout returns the per-source timeline timeout.
func (c Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.Timeline.CollaboratorTimeoutMs) * time.Millisecond
}

// GetRemoteToken returns the remote token from env var or config, in that order.
func GetRemoteToken(cfg Config) string {
	if tok := os.Getenv("DAYLINE_REMOTE_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Remote.Token
}
