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

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisotel"
)

// NewRueidisClient parses cfg.URL, applies TLS and tuning options, optionally
// wraps the client with OpenTelemetry, and pings once so misconfiguration
// fails at startup.
func NewRueidisClient(ctx context.Context, cfg RedisConfig) (rueidis.Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("rueidis: URL must not be empty")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rueidis: parse url: %w", err)
	}
	if u.Scheme == "redis" && cfg.RequireTLS {
		return nil, errors.New("rueidis: RequireTLS=true but URL uses redis:// (plaintext); use rediss://")
	}

	opt, err := rueidis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rueidis: options from url: %w", err)
	}
	opt.ClientName = cfg.ClientName
	opt.DisableRetry = cfg.DisableRetry
	opt.AlwaysPipelining = cfg.AlwaysPipelining
	// counters are never read through the client-side cache
	opt.DisableCache = true
	if cfg.ConnWriteTimeout > 0 {
		opt.ConnWriteTimeout = cfg.ConnWriteTimeout
	}
	if cfg.SkipTLSVerify && opt.TLSConfig != nil {
		tc := opt.TLSConfig.Clone()
		tc.InsecureSkipVerify = true //nolint:gosec
		opt.TLSConfig = tc
	} else if cfg.SkipTLSVerify {
		slog.WarnContext(ctx, "rueidis: SkipTLSVerify has no effect on a plaintext url",
			slog.String("host", u.Hostname()))
	}
	if opt.TLSConfig != nil && opt.TLSConfig.MinVersion == 0 {
		opt.TLSConfig.MinVersion = tls.VersionTLS12
	}

	var cli rueidis.Client
	if cfg.EnableOtel {
		cli, err = rueidisotel.NewClient(opt)
	} else {
		cli, err = rueidis.NewClient(opt)
	}
	if err != nil {
		slog.ErrorContext(ctx, "error during rueidis init", slog.Any("error", err))
		return nil, err
	}

	if err := Ping(ctx, cli, cfg.PingTimeout); err != nil {
		cli.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "rueidis: connected",
		slog.String("mode", string(cli.Mode())),
		slog.String("client_name", cfg.ClientName),
	)
	return cli, nil
}
