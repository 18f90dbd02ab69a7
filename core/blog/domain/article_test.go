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
	"testing"

	"conduit/core/blog/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThenDetails(t *testing.T) {
	f := newFixture(t, "alice")

	created := f.article(t, "alice", "Hello, Wörld!", "go", " go ", "", "sql")
	assert.Equal(t, "hello-world", created.Slug)
	assert.Equal(t, []string{"go", "sql"}, created.TagList)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "alice", created.Author.Username)
	assert.False(t, created.Favorited)
	assert.Zero(t, created.FavoritesCount)

	env, err := f.app.ArticleDetails(t.Context(), domain.ArticleQuery{Slug: created.Slug})
	require.NoError(t, err)
	assert.Equal(t, created, env.Article)
}

func TestCreateArticleSlugCollisions(t *testing.T) {
	f := newFixture(t, "alice", "bob")

	assert.Equal(t, "same-title", f.article(t, "alice", "Same title").Slug)
	assert.Equal(t, "same-title-2", f.article(t, "bob", "Same Title").Slug)
	assert.Equal(t, "same-title-3", f.article(t, "alice", "same  title!").Slug)
	assert.Equal(t, "article", f.article(t, "alice", "!!!").Slug)
}

func TestCreateArticleValidation(t *testing.T) {
	f := newFixture(t, "alice")

	_, err := f.app.CreateArticle(t.Context(), domain.CreateArticleCommand{Title: " ", Body: "b", Author: as("alice")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidData)

	names := make([]string, 0, len(verr.Fields))
	for _, fld := range verr.Fields {
		names = append(names, fld.Name)
	}
	assert.Equal(t, []string{"title", "description"}, names)

	_, err = f.app.CreateArticle(t.Context(), domain.CreateArticleCommand{Title: "t", Description: "d", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCreateArticleCanceledLeavesNoWrites(t *testing.T) {
	f := newFixture(t, "alice")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := f.app.CreateArticle(ctx, domain.CreateArticleCommand{Title: "t", Description: "d", Body: "b", Author: as("alice")})
	require.Error(t, err)
	assert.Equal(t, domain.KindCanceled, domain.KindOf(err))

	env, err := f.app.ListArticles(t.Context(), domain.ListArticlesQuery{})
	require.NoError(t, err)
	assert.Zero(t, env.ArticlesCount)
}

func TestListArticles(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	first := f.article(t, "alice", "One", "go")
	second := f.article(t, "bob", "Two", "go", "sql")
	third := f.article(t, "alice", "Three")

	env, err := f.app.ListArticles(t.Context(), domain.ListArticlesQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, env.ArticlesCount)
	require.Len(t, env.Articles, 3)
	assert.Equal(t, []string{third.Slug, second.Slug, first.Slug},
		[]string{env.Articles[0].Slug, env.Articles[1].Slug, env.Articles[2].Slug})

	env, err = f.app.ListArticles(t.Context(), domain.ListArticlesQuery{Tag: "go", Author: "alice"})
	require.NoError(t, err)
	require.Len(t, env.Articles, 1)
	assert.Equal(t, first.Slug, env.Articles[0].Slug)

	env, err = f.app.ListArticles(t.Context(), domain.ListArticlesQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, env.ArticlesCount)
	require.Len(t, env.Articles, 1)
	assert.Equal(t, second.Slug, env.Articles[0].Slug)

	env, err = f.app.ListArticles(t.Context(), domain.ListArticlesQuery{Author: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, env.Articles)
	assert.Empty(t, env.Articles)

	_, err = f.app.ListArticles(t.Context(), domain.ListArticlesQuery{Limit: -1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.app.ListArticles(t.Context(), domain.ListArticlesQuery{Offset: -5})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestListArticlesViewerFlags(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	f.article(t, "alice", "By alice")
	bobs := f.article(t, "bob", "By bob")
	f.follow(t, "bob", "alice")
	f.favorite(t, "bob", bobs.Slug)

	env, err := f.app.ListArticles(t.Context(), domain.ListArticlesQuery{Viewer: as("bob")})
	require.NoError(t, err)
	require.Len(t, env.Articles, 2)

	byBob, byAlice := env.Articles[0], env.Articles[1]
	assert.True(t, byBob.Favorited)
	assert.False(t, byBob.Author.Following)
	assert.False(t, byAlice.Favorited)
	assert.True(t, byAlice.Author.Following)
}

func TestFeed(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	f.article(t, "alice", "Alice writes")
	f.article(t, "carol", "Carol writes")

	env, err := f.app.Feed(t.Context(), domain.FeedQuery{Viewer: as("bob")})
	require.NoError(t, err)
	assert.Empty(t, env.Articles)
	assert.Zero(t, env.ArticlesCount)

	f.follow(t, "bob", "alice")
	env, err = f.app.Feed(t.Context(), domain.FeedQuery{Viewer: as("bob")})
	require.NoError(t, err)
	require.Len(t, env.Articles, 1)
	assert.Equal(t, "alice-writes", env.Articles[0].Slug)
	assert.True(t, env.Articles[0].Author.Following)

	_, err = f.app.Feed(t.Context(), domain.FeedQuery{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestEditArticle(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	orig := f.article(t, "alice", "Original title", "a", "b")

	t.Run("non-author is forbidden", func(t *testing.T) {
		_, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: orig.Slug, Body: ptr("x"), Actor: as("bob")})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing article wins over forbidden", func(t *testing.T) {
		_, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: "nope", Body: ptr("x"), Actor: as("bob")})
		assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	})

	t.Run("blank present field", func(t *testing.T) {
		_, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: orig.Slug, Title: ptr(""), Actor: as("alice")})
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	t.Run("only supplied fields change", func(t *testing.T) {
		env, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: orig.Slug, Body: ptr("new body"), Actor: as("alice")})
		require.NoError(t, err)
		got := env.Article
		assert.Equal(t, "new body", got.Body)
		assert.Equal(t, orig.Title, got.Title)
		assert.Equal(t, orig.Description, got.Description)
		assert.Equal(t, orig.Slug, got.Slug)
		assert.Equal(t, orig.TagList, got.TagList)
		assert.Equal(t, orig.CreatedAt, got.CreatedAt)
		assert.True(t, got.UpdatedAt.After(orig.UpdatedAt))
	})

	t.Run("no effective change keeps updatedAt", func(t *testing.T) {
		before, err := f.app.ArticleDetails(t.Context(), domain.ArticleQuery{Slug: orig.Slug})
		require.NoError(t, err)
		env, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: orig.Slug, Actor: as("alice")})
		require.NoError(t, err)
		assert.Equal(t, before.Article.UpdatedAt, env.Article.UpdatedAt)
	})

	t.Run("title change regenerates slug", func(t *testing.T) {
		env, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{
			Slug:    orig.Slug,
			Title:   ptr("Brand new title"),
			TagList: ptr([]string{"c"}),
			Actor:   as("alice"),
		})
		require.NoError(t, err)
		assert.Equal(t, "brand-new-title", env.Article.Slug)
		assert.Equal(t, []string{"c"}, env.Article.TagList)

		_, err = f.app.ArticleDetails(t.Context(), domain.ArticleQuery{Slug: orig.Slug})
		assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	})

	t.Run("title with same base keeps slug", func(t *testing.T) {
		env, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: "brand-new-title", Title: ptr("Brand  NEW title!"), Actor: as("alice")})
		require.NoError(t, err)
		assert.Equal(t, "brand-new-title", env.Article.Slug)
		assert.Equal(t, "Brand  NEW title!", env.Article.Title)
	})
}

func TestEditArticleSlugFollowsTitleBase(t *testing.T) {
	f := newFixture(t, "alice")

	t.Run("title ending in a number", func(t *testing.T) {
		top10 := f.article(t, "alice", "Top 10")
		require.Equal(t, "top-10", top10.Slug)

		env, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: top10.Slug, Title: ptr("Top"), Actor: as("alice")})
		require.NoError(t, err)
		assert.Equal(t, "top", env.Article.Slug)

		// the renamed article now owns "top"
		again := f.article(t, "alice", "Top")
		assert.Equal(t, "top-2", again.Slug)
	})

	t.Run("collision suffix survives a same-base rename", func(t *testing.T) {
		env, err := f.app.EditArticle(t.Context(), domain.EditArticleCommand{Slug: "top-2", Title: ptr("TOP!"), Actor: as("alice")})
		require.NoError(t, err)
		assert.Equal(t, "top-2", env.Article.Slug)
		assert.Equal(t, "TOP!", env.Article.Title)
	})
}

func TestDeleteArticle(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	a := f.article(t, "alice", "Doomed", "x")
	f.favorite(t, "bob", a.Slug)
	_, err := f.app.CreateComment(t.Context(), domain.CreateCommentCommand{Slug: a.Slug, Body: "nice", Author: as("bob")})
	require.NoError(t, err)

	err = f.app.DeleteArticle(t.Context(), domain.DeleteArticleCommand{Slug: a.Slug, Actor: as("bob")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.app.DeleteArticle(t.Context(), domain.DeleteArticleCommand{Slug: a.Slug, Actor: as("alice")}))

	_, err = f.app.ArticleDetails(t.Context(), domain.ArticleQuery{Slug: a.Slug})
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	_, err = f.app.ListComments(t.Context(), domain.CommentsQuery{Slug: a.Slug})
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)

	tags, err := f.app.ListTags(t.Context())
	require.NoError(t, err)
	assert.Empty(t, tags.Tags)

	err = f.app.DeleteArticle(t.Context(), domain.DeleteArticleCommand{Slug: a.Slug, Actor: as("alice")})
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

func TestListTags(t *testing.T) {
	f := newFixture(t, "alice")

	env, err := f.app.ListTags(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, env.Tags)
	assert.Empty(t, env.Tags)

	f.article(t, "alice", "One", "zeta", "alpha")
	f.article(t, "alice", "Two", "alpha", "mid")

	env, err = f.app.ListTags(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, env.Tags)
}
