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

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func pageOf(limit, offset int) (int, int, error) {
	verr := &ValidationError{}
	if limit < 0 {
		verr.add("limit", "must not be negative")
	}
	if offset < 0 {
		verr.add("offset", "must not be negative")
	}
	if err := verr.orNil(); err != nil {
		return 0, 0, err
	}
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return limit, offset, nil
}

// ListArticles returns the most recent articles matching every given filter.
func (app *Application) ListArticles(ctx context.Context, q ListArticlesQuery) (*ArticlesEnvelope, error) {
	limit, offset, err := pageOf(q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	v, err := viewer(ctx, app.reader, q.Viewer)
	if err != nil {
		return nil, fail(ctx, "list articles", err)
	}

	env, err := app.listArticles(ctx, ArticleFilter{
		Tag:         q.Tag,
		Author:      q.Author,
		FavoritedBy: q.FavoritedBy,
		Limit:       limit,
		Offset:      offset,
	}, v)
	if err != nil {
		return nil, fail(ctx, "list articles", err)
	}
	return env, nil
}

// Feed lists the most recent articles written by people the viewer follows.
func (app *Application) Feed(ctx context.Context, q FeedQuery) (*ArticlesEnvelope, error) {
	if q.Viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	limit, offset, err := pageOf(q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	v, err := actor(ctx, app.reader, q.Viewer)
	if err != nil {
		return nil, fail(ctx, "feed", err)
	}

	env, err := app.listArticles(ctx, ArticleFilter{FollowedBy: v.ID, Limit: limit, Offset: offset}, v)
	if err != nil {
		return nil, fail(ctx, "feed", err)
	}
	return env, nil
}

func (app *Application) listArticles(ctx context.Context, filter ArticleFilter, v *Person) (*ArticlesEnvelope, error) {
	articles, total, err := app.reader.ListArticles(ctx, filter)
	if err != nil {
		return nil, err
	}
	views, err := articleViews(ctx, app.reader, articles, v)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "listed articles", slog.Int("page", len(views)), slog.Int("total", total))
	return &ArticlesEnvelope{Articles: views, ArticlesCount: total}, nil
}
