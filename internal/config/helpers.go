package config

import (
	"math/rand/v2"

	"github.com/soltixdb/probacast/internal/jobs"
)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// Source returns a seeded PCG source, or nil when no seed is configured.
// Each call returns an independent source with the same stream.
func (c SamplingConfig) Source() rand.Source {
	if c.Seed == 0 {
		return nil
	}
	return rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15)
}

// BrokerOptions maps the jobs section onto broker options.
func (c *JobsConfig) BrokerOptions() jobs.Options {
	return jobs.Options{
		Backend:  c.Backend,
		URL:      c.URL,
		Password: c.Password,
		DB:       c.RedisDB,
		Group:    c.Group,
		Consumer: c.Consumer,
		Brokers:  c.KafkaBrokers,
	}
}
