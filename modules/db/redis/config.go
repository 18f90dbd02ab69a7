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

package redis

import "time"

// RedisConfig configures the rueidis client backing shared rate-limit
// counters. When Enabled is false the process keeps its counters in memory.
//
// URL is a standard Redis URI, for example:
//
//   - Single:  redis://:password@localhost:6379/0
//   - TLS:     rediss://:password@my-redis.example.com:6379/0
//   - Cluster: redis://:password@host1:6379/0?addr=host2:6379&addr=host3:6379
type RedisConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	URL     string `env:"URL" envDefault:"redis://localhost:6379/0"`

	// ClientName is visible in CLIENT LIST.
	ClientName string `env:"CLIENT_NAME" envDefault:"conduit"`

	// KeyPrefix namespaces every key written by this process.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"conduit"`

	// RequireTLS rejects plaintext redis:// URLs.
	RequireTLS    bool `env:"REQUIRE_TLS"`
	SkipTLSVerify bool `env:"SKIP_TLS_VERIFY"`

	// Tuning flags, zero values keep the rueidis defaults.
	DisableRetry     bool          `env:"DISABLE_RETRY"`
	AlwaysPipelining bool          `env:"ALWAYS_PIPELINING"`
	ConnWriteTimeout time.Duration `env:"CONN_WRITE_TIMEOUT"`
	PingTimeout      time.Duration `env:"PING_TIMEOUT" envDefault:"5s"`

	// EnableOtel wraps the client with rueidisotel tracing and metrics.
	EnableOtel bool `env:"ENABLE_OTEL"`
}
