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

package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conduit/modules/clock"

	"github.com/gofrs/uuid/v5"
)

const defaultTxTimeout = 5 * time.Second

type (
	Application struct {
		reader    ReadStore
		writer    WriteStore
		clock     clock.Clock
		txTimeout time.Duration
	}

	Option func(*Application)
)

func WithClock(c clock.Clock) Option {
	return func(app *Application) {
		if c != nil {
			app.clock = c
		}
	}
}

// WithTxTimeout bounds every unit of work started by a command handler.
func WithTxTimeout(d time.Duration) Option {
	return func(app *Application) {
		if d > 0 {
			app.txTimeout = d
		}
	}
}

func NewApp(reader ReadStore, writer WriteStore, opts ...Option) *Application {
	app := &Application{
		reader:    reader,
		writer:    writer,
		clock:     clock.RealClockProvider(),
		txTimeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

func (app *Application) inTx(ctx context.Context, fn func(ctx context.Context, tx WriteTx) error) error {
	return app.writer.WithTimeoutTx(ctx, app.txTimeout, fn)
}

// now is truncated to microseconds, the resolution of a Postgres timestamptz.
func (app *Application) now() time.Time {
	return app.clock.Now().UTC().Truncate(time.Microsecond)
}

func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

// fail passes domain errors through and wraps everything else with
// ErrUnhandled, keeping the cause reachable through errors.Is/As.
func fail(ctx context.Context, op string, err error) error {
	switch KindOf(err) {
	case KindInternal:
		if errors.Is(err, ErrUnhandled) {
			return err
		}
		slog.ErrorContext(ctx, "unexpected error", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrUnhandled, err)
	case KindCanceled:
		slog.DebugContext(ctx, "operation canceled", slog.String("op", op), slog.Any("error", err))
		return err
	default:
		return err
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// actor resolves the person behind a mutating command.
func actor(ctx context.Context, rs ReadStore, id Identity) (*Person, error) {
	if id.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	return rs.GetPersonByUsername(ctx, id.Username)
}

// viewer resolves the person behind a read; anonymous or unknown viewers yield nil.
func viewer(ctx context.Context, rs ReadStore, id Identity) (*Person, error) {
	if id.IsAnonymous() {
		return nil, nil
	}
	p, err := rs.GetPersonByUsername(ctx, id.Username)
	if errors.Is(err, ErrPersonNotFound) {
		slog.DebugContext(ctx, "viewer does not resolve to a person", slog.String("username", id.Username))
		return nil, nil
	}
	return p, err
}
