package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Sampling SamplingConfig `mapstructure:"sampling"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`             // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort        int           `mapstructure:"http_port"`        // HTTP server port
	BodyLimit       int           `mapstructure:"body_limit"`       // Max request body in bytes
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // Grace period for in-flight requests
}

// ForecastConfig holds request defaults and limits for forecasting
type ForecastConfig struct {
	DefaultMethod  string    `mapstructure:"default_method"`  // Forecaster used when a request names none
	Horizon        int       `mapstructure:"horizon"`         // Default number of steps
	MaxHorizon     int       `mapstructure:"max_horizon"`     // Upper bound on requested steps
	Confidence     float64   `mapstructure:"confidence"`      // Coverage of point bounds (0-1)
	MinDataPoints  int       `mapstructure:"min_data_points"` // Shortest accepted series
	SeasonalPeriod int       `mapstructure:"seasonal_period"` // Default season length in steps
	Quantiles      []float64 `mapstructure:"quantiles"`       // Quantile levels returned by default
	Coverages      []float64 `mapstructure:"coverages"`       // Interval coverages returned by default
	MaxSamples     int       `mapstructure:"max_samples"`     // Upper bound on sample draws per request
}

// SamplingConfig controls the random source of predictive distributions
type SamplingConfig struct {
	Seed uint64 `mapstructure:"seed"` // 0 draws from the runtime's random source
}

// JobsConfig configures asynchronous forecast jobs over a message broker
type JobsConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Backend        string   `mapstructure:"backend"`         // nats, redis, kafka, memory
	URL            string   `mapstructure:"url"`             // Broker URL (nats://..., redis://...)
	Password       string   `mapstructure:"password"`        // Redis password
	RedisDB        int      `mapstructure:"redis_db"`        // Redis database number
	Group          string   `mapstructure:"group"`           // Consumer group (redis, kafka)
	Consumer       string   `mapstructure:"consumer"`        // Consumer name (redis; default hostname)
	KafkaBrokers   []string `mapstructure:"kafka_brokers"`   // Kafka broker addresses
	RequestSubject string   `mapstructure:"request_subject"` // Subject carrying forecast jobs
	ResultSubject  string   `mapstructure:"result_subject"`  // Subject receiving job results
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Jobs.Validate(); err != nil {
		return fmt.Errorf("jobs config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("body_limit must be positive")
	}
	return nil
}

// Address returns host:port for the HTTP listener.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.HTTPPort))
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.DefaultMethod == "" {
		return fmt.Errorf("forecast.default_method is required")
	}

	if c.Horizon < 1 {
		return fmt.Errorf("forecast.horizon must be at least 1")
	}

	if c.MaxHorizon < c.Horizon {
		return fmt.Errorf("forecast.max_horizon (%d) cannot be less than forecast.horizon (%d)", c.MaxHorizon, c.Horizon)
	}

	if !(c.Confidence > 0 && c.Confidence < 1) {
		return fmt.Errorf("forecast.confidence must be in (0, 1), got %v", c.Confidence)
	}

	if c.MinDataPoints < 2 {
		return fmt.Errorf("forecast.min_data_points must be at least 2")
	}

	for _, q := range c.Quantiles {
		if !(q > 0 && q < 1) {
			return fmt.Errorf("forecast.quantiles must be in (0, 1), got %v", q)
		}
	}

	for _, cov := range c.Coverages {
		if !(cov >= 0 && cov < 1) {
			return fmt.Errorf("forecast.coverages must be in [0, 1), got %v", cov)
		}
	}

	if c.MaxSamples < 0 {
		return fmt.Errorf("forecast.max_samples cannot be negative")
	}

	return nil
}

// Validate validates jobs configuration. Disabled jobs are not checked.
func (c *JobsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Backend {
	case "nats", "redis", "memory":
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("jobs.kafka_brokers is required for the kafka backend")
		}
	default:
		return fmt.Errorf("jobs.backend must be one of: nats, redis, kafka, memory")
	}

	if c.RequestSubject == "" || c.ResultSubject == "" {
		return fmt.Errorf("jobs.request_subject and jobs.result_subject are required")
	}

	if c.RequestSubject == c.ResultSubject {
		return fmt.Errorf("jobs.request_subject and jobs.result_subject cannot be the same")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
