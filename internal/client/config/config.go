package config

import "time"

// Config holds runtime settings for the BaseKit CLI.
//
// Fields:
//   - ServerURL: base URL of the BaseKit API server.
//   - RequestTimeout: per-request timeout for API calls.
//   - WatchInterval: period between session validation passes.
//   - LogoutDelay: pause between the forced-logout notice and the session wipe.
//   - BackoffBase: initial change-feed reconnect delay; doubles per attempt.
//   - MaxReconnects: consecutive failed subscription attempts before the
//     watcher falls back to periodic validation alone.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	WatchInterval  time.Duration
	LogoutDelay    time.Duration
	BackoffBase    time.Duration
	MaxReconnects  int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.RequestTimeout = 10 * time.Second
	c.WatchInterval = 5 * time.Minute
	c.LogoutDelay = time.Second
	c.BackoffBase = time.Second
	c.MaxReconnects = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from an optional YAML file and environment variables. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseYaml(cfg)
	parseEnv(cfg)
	return cfg
}
