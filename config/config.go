// Package config loads service configuration from the environment.
// A .env file, when present, is loaded first; real environment
// variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Webhook   WebhookConfig
	Media     MediaConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type DatabaseConfig struct {
	// URL is the MongoDB connection string. Its absence is reported by
	// the gateway on first use, not at load time, so tooling that never
	// touches the database can still run.
	URL  string
	Name string
}

type WebhookConfig struct {
	// Secret is the signing secret shared with the identity provider
	// (whsec_... format).
	Secret string
}

type MediaConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type LoggingConfig struct {
	Level string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type ShutdownConfig struct {
	TimeoutSeconds             int
	ReadinessDrainDelaySeconds int
}

// Load reads configuration from the environment, applying defaults for
// anything optional. It never fails; use Validate to enforce required
// values before serving traffic.
func Load() *Config {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "imaginify-backend"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:  os.Getenv("MONGODB_URL"),
			Name: getEnv("MONGODB_DATABASE", "imaginify"),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("WEBHOOK_SECRET"),
		},
		Media: MediaConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getEnv("CLOUDINARY_FOLDER", "imaginify"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getBoolEnv("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "http://localhost:4318"),
			SampleRate: getFloatEnv("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getBoolEnv("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			TimeoutSeconds:             getIntEnv("SHUTDOWN_TIMEOUT_SECONDS", 15),
			ReadinessDrainDelaySeconds: getIntEnv("READINESS_DRAIN_DELAY_SECONDS", 0),
		},
	}
}

// Validate checks that everything required to serve traffic is present.
func (c *Config) Validate() error {
	if c.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("MONGODB_URL is required")
	}
	if c.Media.CloudName == "" || c.Media.APIKey == "" || c.Media.APISecret == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0 and 1, got %v", c.Tracing.SampleRate)
	}
	return nil
}

// GetShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Shutdown.TimeoutSeconds) * time.Second
}

// GetReadinessDrainDelayDuration returns how long to keep serving after
// readiness starts failing, so load balancers can drain.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.Shutdown.ReadinessDrainDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getFloatEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
