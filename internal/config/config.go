// Package config carries the client settings shared by the CLI and the
// engines. Defaults are applied on Load so callers always see a complete
// value.
package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	BaseURL    string
	DeviceName string
	DeviceType string

	// StateDir holds the secure KV file and the fallback keychain.
	StateDir string

	AttemptThreshold int
	HTTPTimeout      time.Duration
	Debug            bool
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://locker.example.com/v3"
	}
	if c.DeviceName == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "lockerctl"
		}
		c.DeviceName = host
	}
	if c.DeviceType == "" {
		c.DeviceType = "cli"
	}
	if c.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.StateDir = filepath.Join(home, ".lockpass")
	}
	if c.AttemptThreshold <= 0 {
		c.AttemptThreshold = 6
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
}

// Load fills in environment overrides and defaults.
func Load() Config {
	c := Config{
		BaseURL:  os.Getenv("LOCKPASS_BASE_URL"),
		StateDir: os.Getenv("LOCKPASS_STATE_DIR"),
		Debug:    os.Getenv("LOCKPASS_DEBUG") != "",
	}
	c.setDefaults()
	return c
}

// StorePath is the secure KV file inside StateDir.
func (c Config) StorePath() string { return filepath.Join(c.StateDir, "store.json") }

// KeychainDir is the fallback keychain directory inside StateDir.
func (c Config) KeychainDir() string { return filepath.Join(c.StateDir, "keychain") }
