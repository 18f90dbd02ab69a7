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

package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"conduit/core/blog/adapters/rest"
	"conduit/core/blog/domain"
	"conduit/modules/appconfig"
	"conduit/modules/clock"
	"conduit/modules/db/redis"
	"conduit/modules/db/redis/counter"
	"conduit/modules/hmac"
	"conduit/modules/middleware"
	"conduit/modules/middleware/ratelimit"
	"conduit/modules/oapi"
	rl "conduit/modules/ratelimit"
	"conduit/modules/server"
	"conduit/modules/services"
	"conduit/modules/telemetry"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const healthInterval = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), config)
	},
}

// manual dependency injection, the graph is small enough to read top to bottom
func serve(ctx context.Context, cfg *appconfig.Config) error {
	clk := clock.RealClockProvider()

	otelShutdown, err := telemetry.Init(ctx, cfg.Otel)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	signer, err := hmac.NewHMACSigner([]byte(cfg.HMAC.Secret))
	if err != nil {
		return err
	}
	tokens := hmac.NewTokenIssuer(signer, clk)

	app := domain.NewApp(store.reader, store.writer,
		domain.WithClock(clk),
		domain.WithTxTimeout(cfg.Store.TxTimeout),
	)
	api := rest.NewAPI(app, tokens, store.health)

	doc, err := middleware.LoadOpenAPI(ctx, oapi.FS, oapi.ConduitSpec)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	route := middleware.MuxRoute(mux)

	limiter, closeLimiter, err := rateLimiter(ctx, cfg, clk, route)
	if err != nil {
		return err
	}
	defer closeLimiter()

	var httpMetrics *telemetry.HTTPMetrics
	if cfg.Otel.Enabled && !cfg.Otel.DisableMetrics {
		if httpMetrics, err = telemetry.NewHTTPMetrics(cfg.Otel.ServiceName); err != nil {
			slog.WarnContext(ctx, "failed to initialize HTTP metrics, continuing without metrics", slog.Any("error", err))
			httpMetrics = nil
		}
	}

	srv, err := server.New(
		cfg.HTTP.Host, cfg.HTTP.Port,
		server.WithMux(mux),
		server.WithReadTimeout(cfg.HTTP.ReadTimeout),
		server.WithWriteTimeout(cfg.HTTP.WriteTimeout),
		server.WithGlobalMiddlewares(
			middleware.Telemetry(httpMetrics, route),
			middleware.Recovery(nil),
		),
		server.WithServices(services.NewBlogAPIService(api, doc, limiter)),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if store.health != nil {
		g.Go(func() error {
			watchHealth(gctx, store.health)
			return nil
		})
	}
	return g.Wait()
}

// rateLimiter builds the rate limiting middleware. Counters live in Redis when
// it is enabled so limits hold across replicas, and in process otherwise.
func rateLimiter(
	ctx context.Context,
	cfg *appconfig.Config,
	clk clock.Clock,
	route middleware.RouteFunc,
) (func(http.Handler) http.Handler, func(), error) {
	noop := func() {}
	if !cfg.RateLimit.Enabled {
		slog.InfoContext(ctx, "rate limiting disabled")
		return nil, noop, nil
	}

	factory := rl.LocalFactory(clk)
	closer := noop
	if cfg.Redis.Enabled {
		client, err := redis.NewRueidisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		factory = rl.SlidingWindowFactory(clk, counter.NewRedisCounterStore(client, cfg.Redis.KeyPrefix), "ratelimit")
		closer = client.Close
	}

	slog.DebugContext(ctx, "app rate limit config", slog.Any("rate_limit_config", cfg.RateLimit))
	policy, err := ratelimit.ParsePolicy(
		factory,
		&cfg.RateLimit,
		ratelimit.RouteFunc(route),
		map[ratelimit.KeyStrategyId]ratelimit.KeyFunc{
			ratelimit.RemoteIpKeyStrategy: ratelimit.RemoteIpKeyFunc,
			ratelimit.IdentityKeyStrategy: rest.IdentityKeyFunc,
		},
	)
	if err != nil {
		closer()
		return nil, noop, err
	}
	return ratelimit.NewRateLimitMiddleware(policy), closer, nil
}

// watchHealth logs store outages until ctx is done. Requests keep being
// served and /healthz reports the failure to the orchestrator.
func watchHealth(ctx context.Context, check rest.HealthFunc) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := check(ctx)
		switch {
		case err != nil && healthy:
			slog.ErrorContext(ctx, "store health check failed", slog.Any("error", err))
		case err == nil && !healthy:
			slog.InfoContext(ctx, "store healthy again")
		}
		healthy = err == nil
	}
}
