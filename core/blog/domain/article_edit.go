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
	"slices"
)

// EditArticle applies the fields present in cmd. A new title regenerates the
// slug unless it slugifies to the same base as the old title.
func (app *Application) EditArticle(ctx context.Context, cmd EditArticleCommand) (*ArticleEnvelope, error) {
	if cmd.Actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	verr := &ValidationError{}
	if cmd.Title != nil && isBlank(*cmd.Title) {
		verr.add("title", "can't be blank")
	}
	if cmd.Description != nil && isBlank(*cmd.Description) {
		verr.add("description", "can't be blank")
	}
	if cmd.Body != nil && isBlank(*cmd.Body) {
		verr.add("body", "can't be blank")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var (
		env *ArticleEnvelope
		err error
	)
	for attempt := 1; ; attempt++ {
		err = app.inTx(ctx, func(ctx context.Context, tx WriteTx) error {
			editor, err := actor(ctx, tx, cmd.Actor)
			if err != nil {
				return err
			}
			current, err := tx.GetArticleBySlug(ctx, cmd.Slug)
			if err != nil {
				return err
			}
			if current.Author.ID != editor.ID {
				slog.DebugContext(ctx, "edit by non-author", slog.String("slug", cmd.Slug), slog.String("actor", editor.Username))
				return ErrForbidden
			}

			changes, err := app.changesOf(ctx, tx, current, cmd)
			if err != nil {
				return err
			}
			slug := current.Slug
			if !changes.IsEmpty() {
				if err := tx.UpdateArticle(ctx, current.ID, changes); err != nil {
					return err
				}
				if changes.Slug != nil {
					slug = *changes.Slug
				}
			}

			updated, err := tx.GetArticleBySlug(ctx, slug)
			if err != nil {
				return err
			}
			env, err = articleEnvelope(ctx, tx, updated, editor)
			return err
		})
		if errors.Is(err, ErrDuplicateSlug) && attempt < maxSlugAttempts {
			slog.DebugContext(ctx, "slug taken concurrently, retrying", slog.String("slug", cmd.Slug), slog.Int("attempt", attempt))
			continue
		}
		break
	}
	if err != nil {
		return nil, fail(ctx, "edit article", err)
	}
	return env, nil
}

// changesOf keeps only the supplied fields that differ from the stored article.
func (app *Application) changesOf(ctx context.Context, rs ReadStore, current *Article, cmd EditArticleCommand) (ArticleChanges, error) {
	var changes ArticleChanges

	if cmd.Title != nil && *cmd.Title != current.Title {
		changes.Title = cmd.Title
		if base := Slugify(*cmd.Title); base != Slugify(current.Title) {
			slug, err := uniqueSlug(ctx, rs, base)
			if err != nil {
				return changes, err
			}
			changes.Slug = &slug
		}
	}
	if cmd.Description != nil && *cmd.Description != current.Description {
		changes.Description = cmd.Description
	}
	if cmd.Body != nil && *cmd.Body != current.Body {
		changes.Body = cmd.Body
	}
	if cmd.TagList != nil {
		tags := normalizeTags(*cmd.TagList)
		if !slices.Equal(tags, current.TagList) {
			changes.TagList = &tags
		}
	}

	if !changes.IsEmpty() {
		changes.UpdatedAt = app.now()
	}
	return changes, nil
}
