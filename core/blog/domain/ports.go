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
	"time"

	"github.com/gofrs/uuid/v5"
)

// ReadStore defines the port for read operations.
//
// Implementations bound to a replica may serve these outside of a transaction;
// the same methods are available inside a unit of work through WriteTx so that
// handlers can read their own writes.
//
// Lookups of a single entity return the matching *NotFound sentinel
// (ErrPersonNotFound, ErrArticleNotFound, ErrCommentNotFound) when no row exists.
type ReadStore interface {
	GetPersonByUsername(ctx context.Context, username string) (*Person, error)

	// GetArticleBySlug loads the article with its author, tags and favorites count.
	GetArticleBySlug(ctx context.Context, slug string) (*Article, error)

	// SlugExists reports whether any article currently uses slug.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ListArticles returns one page ordered by (created_at DESC, id DESC) and the
	// total number of articles matching the filter, ignoring Limit/Offset.
	ListArticles(ctx context.Context, filter ArticleFilter) ([]Article, int, error)

	// GetComment loads a comment with its author.
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)

	// ListComments returns the comments of an article ordered by (created_at, id).
	ListComments(ctx context.Context, articleID uuid.UUID) ([]Comment, error)

	// FollowedAmong returns the subset of targets that observer follows.
	FollowedAmong(ctx context.Context, observerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// FavoritedAmong returns the subset of articles that person has favorited.
	FavoritedAmong(ctx context.Context, personID uuid.UUID, articleIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// ListTags returns every tag in use, sorted alphabetically.
	ListTags(ctx context.Context) ([]string, error)
}

// WriteStore defines the port for write operations.
//
// All mutations happen inside WithTx: if fn returns an error, or ctx is done
// before commit, nothing fn wrote is persisted.
type WriteStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx WriteTx) error) error
	// WithTimeoutTx is the same as WithTx but applies a context timeout before starting the transaction.
	WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx WriteTx) error) error
}

// WriteTx is a transaction-scoped store. It is not safe for concurrent use and
// must not escape the function it was handed to.
type WriteTx interface {
	ReadStore

	// CreatePerson returns ErrDuplicatePerson if the username is taken.
	CreatePerson(ctx context.Context, p Person) (*Person, error)

	// AddFollow returns ErrDuplicateEdge if the edge already exists.
	AddFollow(ctx context.Context, observerID, targetID uuid.UUID) error
	// RemoveFollow is a no-op when the edge does not exist.
	RemoveFollow(ctx context.Context, observerID, targetID uuid.UUID) error

	// AddFavorite returns ErrDuplicateEdge if the edge already exists.
	AddFavorite(ctx context.Context, personID, articleID uuid.UUID) error
	// RemoveFavorite is a no-op when the edge does not exist.
	RemoveFavorite(ctx context.Context, personID, articleID uuid.UUID) error

	// CreateArticle returns ErrDuplicateSlug if the slug is taken.
	CreateArticle(ctx context.Context, a NewArticle) error
	// UpdateArticle returns ErrDuplicateSlug if a new slug is taken.
	UpdateArticle(ctx context.Context, id uuid.UUID, changes ArticleChanges) error
	// DeleteArticle removes the article together with its comments, favorites and tags.
	DeleteArticle(ctx context.Context, id uuid.UUID) error

	CreateComment(ctx context.Context, c NewComment) error
	DeleteComment(ctx context.Context, id uuid.UUID) error
}
