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

package pg

import (
	"context"

	"conduit/core/blog/domain"
	"conduit/modules/db"

	"github.com/gofrs/uuid/v5"
)

var _ domain.ReadStore = (*PostgresReader)(nil)

// PostgresReader calls Reader() for every query so that reads are balanced
// across replicas at runtime.
type PostgresReader struct {
	pool db.ReaderConnectionManager
}

func NewPostgresReader(pool db.ReaderConnectionManager) *PostgresReader {
	return &PostgresReader{pool: pool}
}

func (r *PostgresReader) q() queries {
	return queries{exec: r.pool.Reader()}
}

func (r *PostgresReader) GetPersonByUsername(ctx context.Context, username string) (*domain.Person, error) {
	return r.q().GetPersonByUsername(ctx, username)
}

func (r *PostgresReader) GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return r.q().GetArticleBySlug(ctx, slug)
}

func (r *PostgresReader) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.q().SlugExists(ctx, slug)
}

func (r *PostgresReader) ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, int, error) {
	return r.q().ListArticles(ctx, filter)
}

func (r *PostgresReader) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return r.q().GetComment(ctx, id)
}

func (r *PostgresReader) ListComments(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	return r.q().ListComments(ctx, articleID)
}

func (r *PostgresReader) FollowedAmong(ctx context.Context, observerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.q().FollowedAmong(ctx, observerID, targetIDs)
}

func (r *PostgresReader) FavoritedAmong(ctx context.Context, personID uuid.UUID, articleIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.q().FavoritedAmong(ctx, personID, articleIDs)
}

func (r *PostgresReader) ListTags(ctx context.Context) ([]string, error) {
	return r.q().ListTags(ctx)
}
