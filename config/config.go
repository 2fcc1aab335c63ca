package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the root configuration, parsed from the environment with
// github.com/caarlos0/env. Each concern lives in its own file:
//   - database.go: Postgres, Redis and the summary cache
//   - http.go: the JSON API listener
//   - services.go: service modes and retention
//   - observability.go: log level and StatsD metrics
type AppConfig struct {
	// IsDev is set by DEV=true or APP_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP HTTPConfig

	// Services is a comma-delimited list of enabled services (http, reaper).
	Services string `env:"SERVICES" envDefault:"http"`

	Reaper ReaperConfig

	Observability ObservabilityConfig
}

// Sanitize clamps loaded values into their supported ranges.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Cache.Sanitize()
	c.Reaper.Sanitize()
	c.Observability.Sanitize()
	if !c.IsDev {
		switch strings.ToLower(os.Getenv("APP_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
}

// Validate reports every configuration problem that Sanitize cannot repair.
func (c *AppConfig) Validate() error {
	var errs []error
	if _, err := c.GetEnabledServices(); err != nil {
		errs = append(errs, fmt.Errorf("services: %w", err))
	}
	if c.Cache.Enabled && !c.Redis.Configured() {
		errs = append(errs, errors.New("cache: enabled but no redis target is configured"))
	}
	if c.Redis.UseCluster && c.Redis.UseSentinel {
		errs = append(errs, errors.New("redis: cluster and sentinel modes are mutually exclusive"))
	}
	return errors.Join(errs...)
}

// GetEnabledServices parses Services.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// Enabled reports whether mode is listed in Services. An unparsable list
// enables nothing.
func (c *AppConfig) Enabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[mode]
}
