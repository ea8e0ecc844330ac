package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PROBACAST_SERVER_HTTP_PORT.
const EnvPrefix = "PROBACAST"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/probacast")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("forecast.default_method", d.Forecast.DefaultMethod)
	v.SetDefault("forecast.horizon", d.Forecast.Horizon)
	v.SetDefault("forecast.max_horizon", d.Forecast.MaxHorizon)
	v.SetDefault("forecast.confidence", d.Forecast.Confidence)
	v.SetDefault("forecast.min_data_points", d.Forecast.MinDataPoints)
	v.SetDefault("forecast.seasonal_period", d.Forecast.SeasonalPeriod)
	v.SetDefault("forecast.quantiles", d.Forecast.Quantiles)
	v.SetDefault("forecast.coverages", d.Forecast.Coverages)
	v.SetDefault("forecast.max_samples", d.Forecast.MaxSamples)

	v.SetDefault("sampling.seed", d.Sampling.Seed)

	v.SetDefault("jobs.enabled", d.Jobs.Enabled)
	v.SetDefault("jobs.backend", d.Jobs.Backend)
	v.SetDefault("jobs.url", d.Jobs.URL)
	v.SetDefault("jobs.group", d.Jobs.Group)
	v.SetDefault("jobs.request_subject", d.Jobs.RequestSubject)
	v.SetDefault("jobs.result_subject", d.Jobs.ResultSubject)

	v.SetDefault("auth.enabled", d.Auth.Enabled)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        5565,
			BodyLimit:       16 * 1024 * 1024,
			ShutdownTimeout: 10 * time.Second,
		},
		Forecast: ForecastConfig{
			DefaultMethod:  "auto",
			Horizon:        24,
			MaxHorizon:     1000,
			Confidence:     0.95,
			MinDataPoints:  10,
			SeasonalPeriod: 24,
			Quantiles:      []float64{0.05, 0.25, 0.5, 0.75, 0.95},
			Coverages:      []float64{0.8, 0.95},
			MaxSamples:     1000,
		},
		Jobs: JobsConfig{
			Enabled:        false,
			Backend:        "nats",
			URL:            "nats://localhost:4222",
			Group:          "probacast-workers",
			RequestSubject: "probacast.forecast.requests",
			ResultSubject:  "probacast.forecast.results",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
