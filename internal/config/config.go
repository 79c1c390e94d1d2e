package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./architecta.db"`

	// Remote data service. When DataServiceURL is empty the pulse reads
	// from the local SQLite database.
	DataServiceURL     string        `env:"DATA_SERVICE_URL"`
	DataServiceKey     string        `env:"DATA_SERVICE_KEY"`
	DataServiceTimeout time.Duration `env:"DATA_SERVICE_TIMEOUT" envDefault:"15s"`

	// TrustOwnerHeader accepts X-Owner-ID as the caller's identity. The
	// header is not authenticated, so only enable it behind a proxy that
	// sets it.
	TrustOwnerHeader bool `env:"TRUST_OWNER_HEADER" envDefault:"false"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// UsesDataService reports whether pulse reads should go to the remote data service.
func (c *Config) UsesDataService() bool {
	return c.DataServiceURL != ""
}
