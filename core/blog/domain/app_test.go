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

package domain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"conduit/core/blog/adapters/persistence/memory"
	"conduit/core/blog/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

// stepClock advances by one second on every reading so that creation order is
// always reflected in timestamps.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	app   *domain.Application
	store *memory.Store
	clock *stepClock
}

func newFixture(t *testing.T, usernames ...string) *fixture {
	t.Helper()
	store := memory.New()
	clk := &stepClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	f := &fixture{
		app:   domain.NewApp(store, store, domain.WithClock(clk), domain.WithTxTimeout(time.Second)),
		store: store,
		clock: clk,
	}
	for _, u := range usernames {
		_, err := f.app.RegisterPerson(t.Context(), domain.RegisterPersonCommand{Username: u, Bio: u + " bio"})
		require.NoError(t, err)
	}
	return f
}

func as(username string) domain.Identity {
	return domain.Identity{Username: username}
}

func ptr[T any](v T) *T {
	return &v
}

func (f *fixture) article(t *testing.T, author, title string, tags ...string) domain.ArticleView {
	t.Helper()
	env, err := f.app.CreateArticle(t.Context(), domain.CreateArticleCommand{
		Title:       title,
		Description: "about " + title,
		Body:        "body of " + title,
		TagList:     tags,
		Author:      as(author),
	})
	require.NoError(t, err)
	return env.Article
}

func (f *fixture) follow(t *testing.T, observer, target string) {
	t.Helper()
	_, err := f.app.AddFollow(t.Context(), domain.FollowCommand{Target: target, Observer: as(observer)})
	require.NoError(t, err)
}

func (f *fixture) favorite(t *testing.T, who, slug string) {
	t.Helper()
	_, err := f.app.AddFavorite(t.Context(), domain.FavoriteCommand{Slug: slug, Actor: as(who)})
	require.NoError(t, err)
}

func followerCount(t *testing.T, s *memory.Store, observer, target string) int {
	t.Helper()
	ctx := context.Background()
	o, err := s.GetPersonByUsername(ctx, observer)
	require.NoError(t, err)
	tg, err := s.GetPersonByUsername(ctx, target)
	require.NoError(t, err)
	followed, err := s.FollowedAmong(ctx, o.ID, []uuid.UUID{tg.ID})
	require.NoError(t, err)
	return len(followed)
}
