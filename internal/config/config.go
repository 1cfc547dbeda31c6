// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultTrackEndpoint is the Application Insights ingestion URL events are POSTed to.
const DefaultTrackEndpoint = "https://dc.services.visualstudio.com/v2/track"

// Config holds application configuration loaded from the environment.
type Config struct {
	// DisableTelemetry turns off all event emission; emit calls log and return without network activity.
	DisableTelemetry bool `mapstructure:"DISABLE_TELEMETRY"`
	// DisablePiiProtection disables hashing of free-text identifiers (username); they are sent as-is.
	DisablePiiProtection bool `mapstructure:"DISABLE_PII_PROTECTION"`
	// SuppressTelemetryReminder skips the one-time "telemetry is enabled" log line.
	SuppressTelemetryReminder bool `mapstructure:"SUPPRESS_TELEMETRY_REMINDER"`
	// AppInsightsKey is the Application Insights instrumentation key; required unless telemetry is disabled.
	AppInsightsKey string `mapstructure:"APPINSIGHTS_KEY"`
	// WebRequestTimeoutSec is the per-send HTTP timeout in seconds; 0 means no timeout.
	WebRequestTimeoutSec int `mapstructure:"WEB_REQUEST_TIMEOUT_SEC"`
	// DefaultNoStatus suppresses the progress animation while waiting on an asynchronous send.
	DefaultNoStatus bool `mapstructure:"DEFAULT_NO_STATUS"`
	// TrackEndpoint is the ingestion URL; override for tests or a local collector.
	TrackEndpoint string `mapstructure:"TRACK_ENDPOINT"`
	// ModuleName is the host module name recorded on every event.
	ModuleName string `mapstructure:"MODULE_NAME"`
	// ModuleVersion is the host module version recorded in the ai.application.ver tag.
	ModuleVersion string `mapstructure:"MODULE_VERSION"`
	// PrivacyPolicyFile is an optional Rego policy deciding which property keys are redacted or dropped.
	PrivacyPolicyFile string `mapstructure:"PRIVACY_POLICY_FILE"`

	// Mirrors (optional). When Kafka brokers are set, every built event is mirrored to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaTopic is the Kafka topic for mirrored events (default modtel-events).
	KafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// OTLPEndpoint is an OTLP gRPC endpoint; when set, events are mirrored as OTel log records.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`

	// Worker-only settings for the local archive collector.
	// KafkaGroupID is the consumer group ID for the archive worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// DatabaseURL is the Postgres DSN the worker archives events into; empty disables the archive.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// LokiURL is a Grafana Loki base URL the worker pushes events to; empty disables the push.
	LokiURL string `mapstructure:"LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("DISABLE_TELEMETRY", false)
	v.SetDefault("DISABLE_PII_PROTECTION", false)
	v.SetDefault("SUPPRESS_TELEMETRY_REMINDER", false)
	v.SetDefault("APPINSIGHTS_KEY", "")
	v.SetDefault("WEB_REQUEST_TIMEOUT_SEC", 0)
	v.SetDefault("DEFAULT_NO_STATUS", false)
	v.SetDefault("TRACK_ENDPOINT", DefaultTrackEndpoint)
	v.SetDefault("MODULE_NAME", "modtel")
	v.SetDefault("MODULE_VERSION", "0.0.0")
	v.SetDefault("PRIVACY_POLICY_FILE", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "modtel-events")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("KAFKA_GROUP_ID", "modtel-archive-worker")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if !cfg.DisableTelemetry && cfg.AppInsightsKey == "" {
		return nil, errors.New("config: APPINSIGHTS_KEY must be set unless DISABLE_TELEMETRY=true")
	}

	if cfg.WebRequestTimeoutSec < 0 {
		return nil, errors.New("config: WEB_REQUEST_TIMEOUT_SEC must be >= 0")
	}

	if cfg.TrackEndpoint == "" {
		cfg.TrackEndpoint = DefaultTrackEndpoint
	}

	return &cfg, nil
}

// WebRequestTimeout returns the per-send HTTP timeout. Zero means no timeout,
// matching http.Client semantics.
func (c *Config) WebRequestTimeout() time.Duration {
	if c == nil || c.WebRequestTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.WebRequestTimeoutSec) * time.Second
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the Kafka mirror is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
