package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Config carries process-level settings read from the environment.
type Config struct {
	Environment string
	Addr        string
	DatabaseDSN string

	Notifier  NotifierConfig
	Seed      SeedConfig
	Telemetry TelemetryConfig
}

// TelemetryConfig controls tracing and metrics export.
type TelemetryConfig struct {
	TracingEnabled   bool
	ServiceName      string
	ServiceVersion   string
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// NotifierConfig controls the notification outbox worker.
type NotifierConfig struct {
	Enabled      bool
	BatchSize    int
	PollInterval time.Duration
}

// SeedConfig controls local bootstrap data.
type SeedConfig struct {
	EnsureDemoData bool
}

// IsProduction reports whether the process runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from environment variables with local defaults.
func Load() Config {
	return Config{
		Environment: getenv("MLS_ENV", "development"),
		Addr:        getenv("MLS_ADDR", ":8080"),
		DatabaseDSN: getenv("MLS_DB_DSN", "file:mls.db?_fk=1"),
		Notifier: NotifierConfig{
			Enabled:      getenvBool("MLS_NOTIFIER_ENABLED", true),
			BatchSize:    getenvInt("MLS_NOTIFIER_BATCH_SIZE", 0),
			PollInterval: getenvDuration("MLS_NOTIFIER_POLL_INTERVAL", 0),
		},
		Seed: SeedConfig{
			EnsureDemoData: getenvBool("MLS_SEED_DEMO_DATA", false),
		},
		Telemetry: TelemetryConfig{
			TracingEnabled:   getenvBool("MLS_TRACING_ENABLED", false),
			ServiceName:      getenv("MLS_SERVICE_NAME", "mls"),
			ServiceVersion:   getenv("MLS_SERVICE_VERSION", "dev"),
			ExporterEndpoint: getenv("MLS_OTLP_ENDPOINT", ""),
			ExporterProtocol: getenv("MLS_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    getenvFloat("MLS_TRACE_SAMPLING_RATIO", 0.1),
		},
	}
}

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getenvFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
