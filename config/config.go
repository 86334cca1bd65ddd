// Package config handles glossd configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level glossd configuration.
type Config struct {
	Listen  ListenConfig  `yaml:"listen"`
	Data    DataConfig    `yaml:"data"`
	Auth    AuthConfig    `yaml:"auth"`
	Capture CaptureConfig `yaml:"capture"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Log     LogConfig     `yaml:"log"`
}

// ListenConfig controls the HTTP listener.
type ListenConfig struct {
	Addr string `yaml:"addr"`
	// Origins restricts which pages may call the API; empty allows any.
	Origins []string `yaml:"origins"`
}

// DataConfig controls where session data lives.
type DataConfig struct {
	Dir string `yaml:"dir"`
	// Trace persists SQL traces to a separate traces.db for debugging.
	Trace bool `yaml:"trace"`
}

// AuthConfig guards the API. An empty hash leaves it open, which is fine on
// loopback only.
type AuthConfig struct {
	TokenHash string `yaml:"token_hash"`
}

// CaptureConfig controls the headless browser used for screenshots and
// selector scans.
type CaptureConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Remote     string        `yaml:"remote"` // ws:// devtools URL; empty launches a local browser
	Stealth    bool          `yaml:"stealth"`
	NavTimeout time.Duration `yaml:"nav_timeout"`
}

// BridgeConfig controls the MCP side.
type BridgeConfig struct {
	Stdio bool `yaml:"stdio"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DBPath returns the SQLite file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Data.Dir, "gloss.db")
}

// TracePath returns the SQL trace database inside the data directory.
func (c *Config) TracePath() string {
	return filepath.Join(c.Data.Dir, "traces.db")
}

func (c *Config) applyDefaults() {
	if c.Listen.Addr == "" {
		c.Listen.Addr = "127.0.0.1:7333"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Capture.NavTimeout <= 0 {
		c.Capture.NavTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
