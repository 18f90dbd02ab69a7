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
	"log/slog"
)

// AddFavorite marks the article as favorited by the actor. Favoriting twice is a no-op.
func (app *Application) AddFavorite(ctx context.Context, cmd FavoriteCommand) (*ArticleEnvelope, error) {
	return app.toggleFavorite(ctx, "add favorite", cmd, func(ctx context.Context, tx WriteTx, p *Person, a *Article) error {
		err := tx.AddFavorite(ctx, p.ID, a.ID)
		if errors.Is(err, ErrDuplicateEdge) {
			slog.DebugContext(ctx, "already favorited", slog.String("person", p.Username), slog.String("slug", a.Slug))
			return nil
		}
		return err
	})
}

func (app *Application) toggleFavorite(
	ctx context.Context,
	op string,
	cmd FavoriteCommand,
	apply func(ctx context.Context, tx WriteTx, p *Person, a *Article) error,
) (*ArticleEnvelope, error) {
	if cmd.Actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	var env *ArticleEnvelope
	err := app.inTx(ctx, func(ctx context.Context, tx WriteTx) error {
		p, err := actor(ctx, tx, cmd.Actor)
		if err != nil {
			return err
		}
		a, err := tx.GetArticleBySlug(ctx, cmd.Slug)
		if err != nil {
			return err
		}
		if err := apply(ctx, tx, p, a); err != nil {
			return err
		}

		// reload for the recomputed favorites count
		a, err = tx.GetArticleBySlug(ctx, cmd.Slug)
		if err != nil {
			return err
		}
		env, err = articleEnvelope(ctx, tx, a, p)
		return err
	})
	if err != nil {
		return nil, fail(ctx, op, err)
	}
	return env, nil
}
