package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from BASEKIT_-prefixed environment
// variables. A variable that is unset leaves the current value untouched,
// so environment overrides compose with defaults, JSON, and flags.
//
// Before reading the environment, a .env file in the working directory is
// loaded if present, which keeps local development setups out of shell
// profiles.
//
// Duration variables accept time.ParseDuration syntax ("15m", "720h").
// Malformed duration or integer values panic, matching the behavior of the
// other configuration sources.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString("BASEKIT_HTTP_ADDR", &config.HTTPAddr)
	setString("BASEKIT_LOG_LEVEL", &config.LogLevel)
	setString("BASEKIT_DATABASE_DSN", &config.DatabaseDSN)
	setString("BASEKIT_SECRET_KEY", &config.SecretKey)
	setDuration("BASEKIT_ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	setDuration("BASEKIT_REFRESH_TOKEN_VALIDITY", &config.RefreshTokenValidityDuration)
	setString("BASEKIT_APP_BASE_URL", &config.AppBaseURL)
	setString("BASEKIT_MAIL_TRANSPORT", &config.MailTransport)
	setString("BASEKIT_MAIL_FROM", &config.MailFrom)
	setString("BASEKIT_MAIL_FROM_NAME", &config.MailFromName)
	setString("BASEKIT_SMTP_ADDR", &config.SMTPAddr)
	setString("BASEKIT_SMTP_USERNAME", &config.SMTPUsername)
	setString("BASEKIT_SMTP_PASSWORD", &config.SMTPPassword)
	setString("BASEKIT_KAFKA_BROKER", &config.KafkaBroker)
	setString("BASEKIT_KAFKA_TOPIC", &config.KafkaTopic)
	setString("BASEKIT_KAFKA_GROUP_ID", &config.KafkaGroupID)
	setString("BASEKIT_S3_ROOT_USER", &config.S3RootUser)
	setString("BASEKIT_S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("BASEKIT_S3_BUCKET", &config.S3Bucket)
	setString("BASEKIT_S3_REGION", &config.S3Region)
	setString("BASEKIT_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setInt("BASEKIT_RATE_LIMIT_PER_SECOND", &config.RateLimitPerSecond)
	setInt("BASEKIT_RATE_LIMIT_BURST", &config.RateLimitBurst)
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
