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

func (app *Application) CreateArticle(ctx context.Context, cmd CreateArticleCommand) (*ArticleEnvelope, error) {
	if cmd.Author.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	verr := &ValidationError{}
	if isBlank(cmd.Title) {
		verr.add("title", "can't be blank")
	}
	if isBlank(cmd.Description) {
		verr.add("description", "can't be blank")
	}
	if isBlank(cmd.Body) {
		verr.add("body", "can't be blank")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, fail(ctx, "create article", err)
	}
	tags := normalizeTags(cmd.TagList)
	base := Slugify(cmd.Title)

	var env *ArticleEnvelope
	for attempt := 1; ; attempt++ {
		err = app.inTx(ctx, func(ctx context.Context, tx WriteTx) error {
			author, err := actor(ctx, tx, cmd.Author)
			if err != nil {
				return err
			}
			slug, err := uniqueSlug(ctx, tx, base)
			if err != nil {
				return err
			}
			err = tx.CreateArticle(ctx, NewArticle{
				ID:          id,
				Slug:        slug,
				Title:       cmd.Title,
				Description: cmd.Description,
				Body:        cmd.Body,
				AuthorID:    author.ID,
				TagList:     tags,
				CreatedAt:   app.now(),
			})
			if err != nil {
				return err
			}
			a, err := tx.GetArticleBySlug(ctx, slug)
			if err != nil {
				return err
			}
			env, err = articleEnvelope(ctx, tx, a, author)
			return err
		})
		if errors.Is(err, ErrDuplicateSlug) && attempt < maxSlugAttempts {
			slog.DebugContext(ctx, "slug taken concurrently, retrying", slog.String("base", base), slog.Int("attempt", attempt))
			continue
		}
		break
	}
	if err != nil {
		return nil, fail(ctx, "create article", err)
	}

	slog.InfoContext(ctx, "created article", slog.String("slug", env.Article.Slug), slog.String("author", cmd.Author.Username))
	return env, nil
}
