package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/basekit-io/basekit/internal/timex"
)

// YamlConfig is a DTO used exclusively for YAML unmarshalling.
// It relies on timex.Duration so the file can specify intervals either
// as strings like "30s" or as integer nanoseconds. After parsing,
// values are copied into the runtime Config (which uses time.Duration).
type YamlConfig struct {
	ServerURL      string         `yaml:"server_url"`
	RequestTimeout timex.Duration `yaml:"request_timeout"`
	WatchInterval  timex.Duration `yaml:"watch_interval"`
	LogoutDelay    timex.Duration `yaml:"logout_delay"`
	BackoffBase    timex.Duration `yaml:"backoff_base"`
	MaxReconnects  int            `yaml:"max_reconnects"`
}

// configFilePath resolves the YAML file location.
//
// Lookup order:
//  1. The BASEKIT_CLIENT_CONFIG environment variable.
//  2. ~/.config/basekit/config.yaml.
//
// explicit reports whether the path was named by the user, in which
// case a missing file is an error rather than a skip.
func configFilePath() (path string, explicit bool) {
	if p, ok := os.LookupEnv("BASEKIT_CLIENT_CONFIG"); ok && p != "" {
		return p, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".config", "basekit", "config.yaml"), false
}

// parseYaml overlays Config with values loaded from a YAML file.
// Fields omitted from the file keep their current values, so partial
// files compose with defaults.
//
// A missing file at the default location is skipped. A file named via
// BASEKIT_CLIENT_CONFIG must exist; read or unmarshal errors panic
// (caller should recover if desired).
func parseYaml(cfg *Config) {
	path, explicit := configFilePath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}

	var yc YamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		panic(err)
	}

	if yc.ServerURL != "" {
		cfg.ServerURL = yc.ServerURL
	}
	if yc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(yc.RequestTimeout.Duration)
	}
	if yc.WatchInterval.Duration != 0 {
		cfg.WatchInterval = time.Duration(yc.WatchInterval.Duration)
	}
	if yc.LogoutDelay.Duration != 0 {
		cfg.LogoutDelay = time.Duration(yc.LogoutDelay.Duration)
	}
	if yc.BackoffBase.Duration != 0 {
		cfg.BackoffBase = time.Duration(yc.BackoffBase.Duration)
	}
	if yc.MaxReconnects != 0 {
		cfg.MaxReconnects = yc.MaxReconnects
	}
}
