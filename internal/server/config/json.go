package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/basekit-io/basekit/internal/flagx"
	"github.com/basekit-io/basekit/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	LogLevel                     string         `json:"log_level"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	AppBaseURL                   string         `json:"app_base_url"`
	MailTransport                string         `json:"mail_transport"`
	MailFrom                     string         `json:"mail_from"`
	MailFromName                 string         `json:"mail_from_name"`
	SMTPAddr                     string         `json:"smtp_addr"`
	SMTPUsername                 string         `json:"smtp_username"`
	SMTPPassword                 string         `json:"smtp_password"`
	KafkaBroker                  string         `json:"kafka_broker"`
	KafkaTopic                   string         `json:"kafka_topic"`
	KafkaGroupID                 string         `json:"kafka_group_id"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	RateLimitPerSecond           int            `json:"rate_limit_per_second"`
	RateLimitBurst               int            `json:"rate_limit_burst"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config,
// so a provided JSON file is expected to specify the full set of fields.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults, command-line
// flags, and environment variables as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.ConfigFileArg()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.HTTPAddr = c.HTTPAddr
	config.LogLevel = c.LogLevel
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.AppBaseURL = c.AppBaseURL
	config.MailTransport = c.MailTransport
	config.MailFrom = c.MailFrom
	config.MailFromName = c.MailFromName
	config.SMTPAddr = c.SMTPAddr
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.KafkaBroker = c.KafkaBroker
	config.KafkaTopic = c.KafkaTopic
	config.KafkaGroupID = c.KafkaGroupID
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.RateLimitPerSecond = c.RateLimitPerSecond
	config.RateLimitBurst = c.RateLimitBurst
}
