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

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"conduit/core/blog/adapters/persistence/memory"
	"conduit/core/blog/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPerson(t *testing.T, s *memory.Store, username string) domain.Person {
	t.Helper()
	p := domain.Person{ID: uuid.Must(uuid.NewV4()), Username: username}
	err := s.WithTx(t.Context(), func(ctx context.Context, tx domain.WriteTx) error {
		_, err := tx.CreatePerson(ctx, p)
		return err
	})
	require.NoError(t, err)
	return p
}

func seedArticle(t *testing.T, s *memory.Store, author domain.Person, slug string, at time.Time, tags ...string) uuid.UUID {
	t.Helper()
	id := uuid.Must(uuid.NewV4())
	err := s.WithTx(t.Context(), func(ctx context.Context, tx domain.WriteTx) error {
		return tx.CreateArticle(ctx, domain.NewArticle{
			ID: id, Slug: slug, Title: slug, Description: "d", Body: "b",
			AuthorID: author.ID, TagList: tags, CreatedAt: at,
		})
	})
	require.NoError(t, err)
	return id
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := memory.New()
	boom := errors.New("boom")

	err := s.WithTx(t.Context(), func(ctx context.Context, tx domain.WriteTx) error {
		_, err := tx.CreatePerson(ctx, domain.Person{ID: uuid.Must(uuid.NewV4()), Username: "alice"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetPersonByUsername(t.Context(), "alice")
	assert.ErrorIs(t, err, domain.ErrPersonNotFound)
}

func TestWithTxRollsBackOnCancel(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(t.Context())

	err := s.WithTx(ctx, func(ctx context.Context, tx domain.WriteTx) error {
		_, err := tx.CreatePerson(ctx, domain.Person{ID: uuid.Must(uuid.NewV4()), Username: "alice"})
		cancel()
		return err
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.GetPersonByUsername(t.Context(), "alice")
	assert.ErrorIs(t, err, domain.ErrPersonNotFound)
}

func TestUniqueConstraints(t *testing.T) {
	s := memory.New()
	alice := seedPerson(t, s, "alice")
	bob := seedPerson(t, s, "bob")
	articleID := seedArticle(t, s, alice, "hello", time.Now())

	err := s.WithTx(t.Context(), func(ctx context.Context, tx domain.WriteTx) error {
		_, err := tx.CreatePerson(ctx, domain.Person{ID: uuid.Must(uuid.NewV4()), Username: "alice"})
		assert.ErrorIs(t, err, domain.ErrDuplicatePerson)

		require.NoError(t, tx.AddFollow(ctx, bob.ID, alice.ID))
		assert.ErrorIs(t, tx.AddFollow(ctx, bob.ID, alice.ID), domain.ErrDuplicateEdge)

		require.NoError(t, tx.AddFavorite(ctx, bob.ID, articleID))
		assert.ErrorIs(t, tx.AddFavorite(ctx, bob.ID, articleID), domain.ErrDuplicateEdge)

		err = tx.CreateArticle(ctx, domain.NewArticle{ID: uuid.Must(uuid.NewV4()), Slug: "hello", AuthorID: bob.ID})
		assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
		return nil
	})
	require.NoError(t, err)

	a, err := s.GetArticleBySlug(t.Context(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, a.FavoritesCount)
	assert.Equal(t, alice.Username, a.Author.Username)
}

func TestListArticlesFiltersAndOrder(t *testing.T) {
	s := memory.New()
	alice := seedPerson(t, s, "alice")
	bob := seedPerson(t, s, "bob")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := seedArticle(t, s, alice, "first", base, "go")
	second := seedArticle(t, s, bob, "second", base.Add(time.Minute), "go", "sql")
	third := seedArticle(t, s, alice, "third", base.Add(2*time.Minute), "sql")

	require.NoError(t, s.WithTx(t.Context(), func(ctx context.Context, tx domain.WriteTx) error {
		if err := tx.AddFavorite(ctx, bob.ID, first); err != nil {
			return err
		}
		return tx.AddFollow(ctx, bob.ID, alice.ID)
	}))

	ids := func(articles []domain.Article) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(articles))
		for _, a := range articles {
			out = append(out, a.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.ArticleFilter
		want   []uuid.UUID
		total  int
	}{
		{name: "all newest first", filter: domain.ArticleFilter{}, want: []uuid.UUID{third, second, first}, total: 3},
		{name: "by tag", filter: domain.ArticleFilter{Tag: "go"}, want: []uuid.UUID{second, first}, total: 2},
		{name: "by author", filter: domain.ArticleFilter{Author: "alice"}, want: []uuid.UUID{third, first}, total: 2},
		{name: "unknown author", filter: domain.ArticleFilter{Author: "carol"}, want: []uuid.UUID{}, total: 0},
		{name: "favorited by", filter: domain.ArticleFilter{FavoritedBy: "bob"}, want: []uuid.UUID{first}, total: 1},
		{name: "conjunctive", filter: domain.ArticleFilter{Tag: "sql", Author: "bob"}, want: []uuid.UUID{second}, total: 1},
		{name: "followed by", filter: domain.ArticleFilter{FollowedBy: bob.ID}, want: []uuid.UUID{third, first}, total: 2},
		{name: "paged", filter: domain.ArticleFilter{Limit: 1, Offset: 1}, want: []uuid.UUID{second}, total: 3},
		{name: "offset past end", filter: domain.ArticleFilter{Limit: 5, Offset: 10}, want: []uuid.UUID{}, total: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.ListArticles(t.Context(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestDeleteArticleCascades(t *testing.T) {
	s := memory.New()
	alice := seedPerson(t, s, "alice")
	articleID := seedArticle(t, s, alice, "hello", time.Now(), "go")
	commentID := uuid.Must(uuid.NewV4())

	require.NoError(t, s.WithTx(t.Context(), func(ctx context.Context, tx domain.WriteTx) error {
		if err := tx.AddFavorite(ctx, alice.ID, articleID); err != nil {
			return err
		}
		return tx.CreateComment(ctx, domain.NewComment{ID: commentID, ArticleID: articleID, AuthorID: alice.ID, Body: "hi"})
	}))
	require.NoError(t, s.WithTx(t.Context(), func(ctx context.Context, tx domain.WriteTx) error {
		return tx.DeleteArticle(ctx, articleID)
	}))

	_, err := s.GetArticleBySlug(t.Context(), "hello")
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	_, err = s.GetComment(t.Context(), commentID)
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)

	favorited, err := s.FavoritedAmong(t.Context(), alice.ID, []uuid.UUID{articleID})
	require.NoError(t, err)
	assert.Empty(t, favorited)

	tags, err := s.ListTags(t.Context())
	require.NoError(t, err)
	assert.Empty(t, tags)
}
