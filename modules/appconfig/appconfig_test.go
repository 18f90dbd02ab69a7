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
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HMAC_SECRET", "dev-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.TxTimeout)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.HMAC.TokenTTL)
	assert.Equal(t, "localhost", cfg.Postgres.WriteConfig.Host)
	assert.Equal(t, "conduit", cfg.Postgres.WriteConfig.Database)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.DefaultPolicy.Window)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HMAC_SECRET", "dev-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POSTGRES_PRIMARY_HOST", "db.internal")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "db.internal", cfg.Postgres.WriteConfig.Host)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("HMAC_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }},
		{"zero tx timeout", func(c *Config) { c.Store.TxTimeout = 0 }},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }},
		{"short prod secret", func(c *Config) { c.Env = "prod" }},
		{"memory in prod", func(c *Config) {
			c.Env = "prod"
			c.HMAC.Secret = "0123456789abcdef0123456789abcdef"
			c.Store.Driver = StoreMemory
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			assert.Error(t, validate(&c))
		})
	}
	c := validConfig()
	assert.NoError(t, validate(&c))
}

func validConfig() Config {
	var c Config
	c.Env = "dev"
	c.Store.Driver = StorePostgres
	c.Store.TxTimeout = time.Second
	c.HTTP.Port = 8080
	c.HMAC.Secret = "secret"
	c.HMAC.TokenTTL = time.Hour
	return c
}
