package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/subtick/internal/logging"
)

// Config holds subtick configuration.
type Config struct {
	Serial  SerialConfig  `toml:"serial"`
	Monitor MonitorConfig `toml:"monitor"`
	Presets PresetsConfig `toml:"presets"`
	API     APIConfig     `toml:"api"`
	Log     LogConfig     `toml:"log"`
	UI      UIConfig      `toml:"ui"`
}

// SerialConfig selects the signal device.
type SerialConfig struct {
	Port string `toml:"port"` // empty: ask at startup
	Baud int    `toml:"baud"`
}

// MonitorConfig controls polling and the signal bytes.
type MonitorConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	Increase        int `toml:"increase"`
	Decrease        int `toml:"decrease"`
}

// PresetsConfig locates the preset store.
type PresetsConfig struct {
	Path string `toml:"path"`
}

// APIConfig controls the subscriber count API.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LogConfig controls monitor logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// UIConfig controls display options.
type UIConfig struct {
	Color bool `toml:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Serial:  SerialConfig{Baud: 9600},
		Monitor: MonitorConfig{IntervalSeconds: 10, Increase: '+', Decrease: '-'},
		Presets: PresetsConfig{Path: "presets.json"},
		API:     APIConfig{BaseURL: "https://youtube.googleapis.com", TimeoutSeconds: 10},
		Log:     LogConfig{Level: "info"},
		UI:      UIConfig{Color: true},
	}
}

// ConfigDir returns the subtick config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "subtick")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or the default path when path is empty.
// A missing file yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, or the default path when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists(path string) error {
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(Default(), path)
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Monitor.IntervalSeconds < 1 {
		return fmt.Errorf("monitor.interval_seconds must be at least 1, got %d", c.Monitor.IntervalSeconds)
	}
	for _, b := range []struct {
		key string
		val int
	}{{"monitor.increase", c.Monitor.Increase}, {"monitor.decrease", c.Monitor.Decrease}} {
		if b.val < 0 || b.val > 255 {
			return fmt.Errorf("%s must be a byte value (0-255), got %d", b.key, b.val)
		}
	}
	if c.Monitor.Increase == c.Monitor.Decrease {
		return fmt.Errorf("monitor.increase and monitor.decrease must differ, both are %d", c.Monitor.Increase)
	}
	if c.API.TimeoutSeconds < 1 {
		return fmt.Errorf("api.timeout_seconds must be at least 1, got %d", c.API.TimeoutSeconds)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Interval returns the polling interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// Timeout returns the API request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Signals returns the increase and decrease bytes.
func (c *Config) Signals() (increase, decrease byte) {
	return byte(c.Monitor.Increase), byte(c.Monitor.Decrease)
}
