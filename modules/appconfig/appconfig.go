// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package appconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conduit/modules/db/postgres"
	"conduit/modules/db/redis"
	"conduit/modules/hmac"
	"conduit/modules/middleware/ratelimit"
	"conduit/modules/telemetry"

	"github.com/caarlos0/env/v11"
)

type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreMemory   StoreDriver = "memory"
)

type (
	Config struct {
		Env      string     `env:"ENV" envDefault:"dev"`
		LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

		HTTP  HTTPConfig  `envPrefix:"HTTP_"`
		Store StoreConfig `envPrefix:"STORE_"`

		// --- core infra ----
		HMAC     hmac.HMACConfig         `envPrefix:"HMAC_"`
		Redis    redis.RedisConfig       `envPrefix:"REDIS_"`
		Postgres postgres.PostgresConfig `envPrefix:"POSTGRES_"`

		// --- middlewares ----
		RateLimit ratelimit.RestHTTPConfig `envPrefix:"RATE_LIMIT_"`

		// --- otel ----
		// OTEL variables have their own naming conventions, so no prefix here
		Otel telemetry.Config
	}

	HTTPConfig struct {
		Host         string        `env:"HOST" envDefault:"0.0.0.0"`
		Port         int           `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	}

	StoreConfig struct {
		Driver    StoreDriver   `env:"DRIVER" envDefault:"postgres"`
		TxTimeout time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`
		// MigrateOnStart applies pending migrations before serving.
		MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"false"`
	}
)

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(c *Config) error {
	var errs []error
	switch c.Store.Driver {
	case StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store.Driver))
	}
	if c.Store.TxTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TX_TIMEOUT must be positive"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT out of range: %d", c.HTTP.Port))
	}
	if c.HMAC.TokenTTL <= 0 {
		errs = append(errs, errors.New("HMAC_TOKEN_TTL must be positive"))
	}
	if strings.EqualFold(c.Env, "prod") {
		if len(c.HMAC.Secret) < 32 {
			errs = append(errs, errors.New("HMAC_SECRET must be at least 32 bytes in prod"))
		}
		if c.Store.Driver == StoreMemory {
			errs = append(errs, errors.New("STORE_DRIVER=memory is not allowed in prod"))
		}
	}
	return errors.Join(errs...)
}
