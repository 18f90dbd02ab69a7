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
	"errors"
	"log/slog"

	"conduit/core/blog/adapters/persistence/memory"
	"conduit/core/blog/adapters/persistence/pg"
	"conduit/core/blog/adapters/rest"
	"conduit/core/blog/domain"
	"conduit/modules/appconfig"
	"conduit/modules/db/postgres"
)

var errMemoryStore = errors.New("command requires STORE_DRIVER=postgres")

type blogStore struct {
	reader domain.ReadStore
	writer domain.WriteStore

	// nil for the in-memory store
	pool   *postgres.PostgresConnectionPool
	health rest.HealthFunc
}

func (s *blogStore) Close(ctx context.Context) {
	if s.pool == nil {
		return
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "database shutdown error", slog.Any("error", err))
	}
}

func openStore(ctx context.Context, cfg *appconfig.Config) (*blogStore, error) {
	if cfg.Store.Driver == appconfig.StoreMemory {
		slog.WarnContext(ctx, "using the in-memory store, data is lost on exit")
		s := memory.New()
		return &blogStore{reader: s, writer: s}, nil
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.MigrateOnStart {
		if err := pool.MigrateUp(ctx); err != nil {
			_ = pool.Shutdown(ctx)
			return nil, err
		}
	}
	return &blogStore{
		reader: pg.NewPostgresReader(pool),
		writer: pg.NewPostgresWriter(pool),
		pool:   pool,
		health: pool.HealthCheck,
	}, nil
}

func openPool(ctx context.Context, cfg *appconfig.Config) (*postgres.PostgresConnectionPool, error) {
	if cfg.Store.Driver != appconfig.StorePostgres {
		return nil, errMemoryStore
	}
	pool, err := postgres.New(ctx, &cfg.Postgres, postgres.OptionsFor(&cfg.Postgres, cfg.Otel.ServiceName))
	if err != nil {
		return nil, err
	}
	if err := pool.HealthCheck(ctx); err != nil {
		_ = pool.Shutdown(ctx)
		return nil, err
	}
	return pool, nil
}
