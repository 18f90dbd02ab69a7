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
	"log/slog"
)

// DeleteArticle removes the article with its comments, favorites and tags.
func (app *Application) DeleteArticle(ctx context.Context, cmd DeleteArticleCommand) error {
	if cmd.Actor.IsAnonymous() {
		return ErrUnauthenticated
	}

	err := app.inTx(ctx, func(ctx context.Context, tx WriteTx) error {
		p, err := actor(ctx, tx, cmd.Actor)
		if err != nil {
			return err
		}
		a, err := tx.GetArticleBySlug(ctx, cmd.Slug)
		if err != nil {
			return err
		}
		if a.Author.ID != p.ID {
			return ErrForbidden
		}
		return tx.DeleteArticle(ctx, a.ID)
	})
	if err != nil {
		return fail(ctx, "delete article", err)
	}

	slog.InfoContext(ctx, "deleted article", slog.String("slug", cmd.Slug))
	return nil
}
