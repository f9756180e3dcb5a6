// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServiceName string        `env:"PLANTNET_SERVICE_NAME" envDefault:"plantnet"`
	Env         string        `env:"PLANTNET_ENV" envDefault:"dev"`
	Addr        string        `env:"PLANTNET_ADDR" envDefault:":9000"`
	MongoURI    string        `env:"PLANTNET_MONGO_URI"`
	MongoDB     string        `env:"PLANTNET_MONGO_DB" envDefault:"plantnet"`
	TokenSecret string        `env:"PLANTNET_TOKEN_SECRET" envDefault:"dev-secret"`
	TokenTTL    time.Duration `env:"PLANTNET_TOKEN_TTL" envDefault:"8760h"`
}

// ParseEnv loads configuration from environment variables. An empty
// MongoURI selects the in-memory store, which keeps local development
// dependency-free.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
