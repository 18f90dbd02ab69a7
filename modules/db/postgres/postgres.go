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

package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"conduit/modules/db"

	"github.com/amacneil/dbmate/v2/pkg/dbmate"
	_ "github.com/amacneil/dbmate/v2/pkg/driver/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ db.ConnectionPool = (*PostgresConnectionPool)(nil)

type PostgresConnectionPool struct {
	writer bob.DB

	readers []bob.DB
	mu      sync.Mutex

	// primaryURL is used by dbmate, which opens its own connection.
	primaryURL *url.URL
}

// HealthCheck implements db.ConnectionPool.
func (p *PostgresConnectionPool) HealthCheck(ctx context.Context) error {
	_, err := p.writer.ExecContext(ctx, "SELECT 1")
	return err
}

// MigrateUp creates the database if needed and applies every pending migration.
func (p *PostgresConnectionPool) MigrateUp(ctx context.Context) error {
	m, err := p.migrator(ctx)
	if err != nil {
		return err
	}
	if err := m.CreateAndMigrate(); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	slog.InfoContext(ctx, "migrations applied")
	return nil
}

// MigrateDown rolls back the most recent migration.
func (p *PostgresConnectionPool) MigrateDown(ctx context.Context) error {
	m, err := p.migrator(ctx)
	if err != nil {
		return err
	}
	if err := m.Rollback(); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	slog.InfoContext(ctx, "migration rolled back")
	return nil
}

func (p *PostgresConnectionPool) migrator(ctx context.Context) (*dbmate.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.primaryURL == nil {
		return nil, errors.New("migrations require a primary connection url")
	}
	m := dbmate.New(p.primaryURL)
	m.FS = migrations
	m.MigrationsDir = []string{"migrations"}
	m.AutoDumpSchema = false
	return m, nil
}

// Reader implements db.ConnectionPool.
//
// Many strategies exist for selecting one reader from the list:
// - Health-aware selection (cool-down & circuit breakers)
// - Power of two choices
// - Retry policy
// - Read-your-write
//
// Without any profiling/edge cases to justify implementing the more complex
// choices, here we first use a simpler approach first
func (p *PostgresConnectionPool) Reader() db.Querier {
	if len(p.readers) == 0 {
		return p.Writer()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.readers[rand.IntN(len(p.readers))]
}

// WithTimeoutTx implements db.ConnectionPool.
func (p *PostgresConnectionPool) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn db.TxFn) error {
	ctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return p.WithTx(ctx, fn)
}

// WithTx implements db.ConnectionPool.
func (p *PostgresConnectionPool) WithTx(ctx context.Context, fn db.TxFn) error {
	return p.writer.RunInTx(ctx, &sql.TxOptions{
		ReadOnly: false,
	}, func(ctx context.Context, exec bob.Executor) error {
		return fn(ctx, exec)
	})
}

// Shutdown implements db.ConnectionPool.
func (p *PostgresConnectionPool) Shutdown(_ context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error

	if err := p.writer.Close(); err != nil {
		errs = append(errs, err)
	}

	for _, reader := range p.readers {
		if err := reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	// single, flat join
	return errors.Join(errs...)
}

// Writer implements db.ConnectionPool.
func (p *PostgresConnectionPool) Writer() db.Querier {
	return p.writer
}

func New(
	ctx context.Context,
	config *PostgresConfig,
	opts PostgresOptions,
) (*PostgresConnectionPool, error) {
	writer, err := initDBFromConfig(ctx, &config.WriteConfig, opts.WriterOptions...)
	if err != nil {
		return nil, fmt.Errorf("open primary: %w", err)
	}

	var readers []bob.DB
	for i, r := range config.ReadConfigs {
		reader, err := initDBFromConfig(ctx, &r, opts.ReaderOptions...)
		if err != nil {
			_ = writer.Close()
			return nil, fmt.Errorf("open replica %d: %w", i, err)
		}
		readers = append(readers, reader)
	}

	slog.DebugContext(ctx, "postgres pool ready",
		slog.String("primary", config.WriteConfig.Host),
		slog.Int("replicas", len(readers)))

	return &PostgresConnectionPool{
		writer:     writer,
		readers:    readers,
		primaryURL: config.WriteConfig.URL(),
	}, nil
}

// NewFromDB wraps already opened handles. Migrations are unavailable on such a pool.
func NewFromDB(primary *sql.DB, replicas ...*sql.DB) *PostgresConnectionPool {
	p := &PostgresConnectionPool{writer: bob.NewDB(primary)}
	for _, r := range replicas {
		p.readers = append(p.readers, bob.NewDB(r))
	}
	return p
}

func initDBFromConfig(
	ctx context.Context,
	config *PoolConfig,
	opts ...PgxConfigOption,
) (bob.DB, error) {
	poolConfig, err := pgxpool.ParseConfig(config.connString())
	if err != nil {
		return bob.DB{}, err
	}

	for _, opt := range opts {
		if opt != nil {
			opt(poolConfig)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return bob.DB{}, err
	}
	return bob.NewDB(stdlib.OpenDBFromPool(pool)), nil
}
