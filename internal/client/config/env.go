package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from BASEKIT_-prefixed environment
// variables. A variable that is unset leaves the current value
// untouched, so environment overrides compose with defaults and the
// YAML file.
//
// Duration variables accept time.ParseDuration syntax ("30s", "5m").
// Malformed duration or integer values panic, matching the YAML source.
func parseEnv(cfg *Config) {
	setString("BASEKIT_SERVER_URL", &cfg.ServerURL)
	setDuration("BASEKIT_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	setDuration("BASEKIT_WATCH_INTERVAL", &cfg.WatchInterval)
	setDuration("BASEKIT_LOGOUT_DELAY", &cfg.LogoutDelay)
	setDuration("BASEKIT_BACKOFF_BASE", &cfg.BackoffBase)
	setInt("BASEKIT_MAX_RECONNECTS", &cfg.MaxReconnects)
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func setDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
