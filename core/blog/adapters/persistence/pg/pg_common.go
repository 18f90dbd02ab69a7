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
	"database/sql"
	"errors"
	"time"

	"conduit/core/blog/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation       = "23505"
	pgSerializationFailure  = "40001"
	peopleUsernameKey       = "people_username_key"
	articlesSlugKey         = "articles_slug_key"
	articleSelectFromClause = "articles AS a JOIN people AS p ON p.id = a.author_id"
)

var articleColumns = []any{
	"a.id", "a.slug", "a.title", "a.description", "a.body", "a.created_at", "a.updated_at",
	"p.id AS author_id", "p.username AS author_username", "p.bio AS author_bio", "p.image AS author_image",
	"(SELECT COUNT(*) FROM article_favorites AS f WHERE f.article_id = a.id) AS favorites_count",
}

var commentColumns = []any{
	"c.id", "c.article_id", "c.body", "c.created_at", "c.updated_at",
	"p.id AS author_id", "p.username AS author_username", "p.bio AS author_bio", "p.image AS author_image",
}

type (
	PersonRow struct {
		ID       uuid.UUID `db:"id"`
		Username string    `db:"username"`
		Bio      string    `db:"bio"`
		Image    string    `db:"image"`
	}

	// ArticleRow is an article joined with its author. Tags are loaded separately.
	ArticleRow struct {
		ID             uuid.UUID `db:"id"`
		Slug           string    `db:"slug"`
		Title          string    `db:"title"`
		Description    string    `db:"description"`
		Body           string    `db:"body"`
		CreatedAt      time.Time `db:"created_at"`
		UpdatedAt      time.Time `db:"updated_at"`
		AuthorID       uuid.UUID `db:"author_id"`
		AuthorUsername string    `db:"author_username"`
		AuthorBio      string    `db:"author_bio"`
		AuthorImage    string    `db:"author_image"`
		FavoritesCount int       `db:"favorites_count"`
	}

	CommentRow struct {
		ID             uuid.UUID `db:"id"`
		ArticleID      uuid.UUID `db:"article_id"`
		Body           string    `db:"body"`
		CreatedAt      time.Time `db:"created_at"`
		UpdatedAt      time.Time `db:"updated_at"`
		AuthorID       uuid.UUID `db:"author_id"`
		AuthorUsername string    `db:"author_username"`
		AuthorBio      string    `db:"author_bio"`
		AuthorImage    string    `db:"author_image"`
	}

	TagRow struct {
		ArticleID uuid.UUID `db:"article_id"`
		Tag       string    `db:"tag"`
	}
)

func (r PersonRow) toPerson() domain.Person {
	return domain.Person{ID: r.ID, Username: r.Username, Bio: r.Bio, Image: r.Image}
}

func (r ArticleRow) toArticle(tags []string) domain.Article {
	return domain.Article{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Body:        r.Body,
		Author: domain.Person{
			ID:       r.AuthorID,
			Username: r.AuthorUsername,
			Bio:      r.AuthorBio,
			Image:    r.AuthorImage,
		},
		TagList:        tags,
		FavoritesCount: r.FavoritesCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r CommentRow) toComment() domain.Comment {
	return domain.Comment{
		ID:        r.ID,
		ArticleID: r.ArticleID,
		Body:      r.Body,
		Author: domain.Person{
			ID:       r.AuthorID,
			Username: r.AuthorUsername,
			Bio:      r.AuthorBio,
			Image:    r.AuthorImage,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// wrapError centralizes mapping of DB errors to domain errors. notFound is
// returned in place of sql.ErrNoRows.
func wrapError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case peopleUsernameKey:
				return domain.ErrDuplicatePerson
			case articlesSlugKey:
				return domain.ErrDuplicateSlug
			default:
				return domain.ErrDuplicateEdge
			}
		case pgSerializationFailure:
			return domain.ErrConcurrentUpdate
		}
	}

	return err
}
