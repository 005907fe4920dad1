// Package config loads runtime configuration for the BaseKit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML file (see parseYaml), located via the
//     BASEKIT_CLIENT_CONFIG variable or ~/.config/basekit/config.yaml.
//  3. Environment variables (see parseEnv), which override earlier values.
//
// # YAML schema
//
// The YAML loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	server_url: "http://localhost:8080"
//	request_timeout: "10s"
//	watch_interval: "5m"
//	logout_delay: "1s"
//	backoff_base: "1s"
//	max_reconnects: 5
//
// Primary API
//
//   - type Config: holds the server URL, timeouts and watcher tuning
//   - func LoadConfig() *Config: builds Config by applying defaults, YAML, then env
//   - func (*Config) LoadDefaults(): sets sensible defaults
package config
