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
	"database/sql"
	"fmt"
	"time"

	"conduit/core/blog/domain"
	"conduit/modules/db"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
)

var (
	_ domain.WriteStore = (*PostgresWriter)(nil)
	_ domain.WriteTx    = (*writerTx)(nil)
)

type PostgresWriter struct {
	txm db.TxManager
}

func NewPostgresWriter(txm db.TxManager) *PostgresWriter {
	return &PostgresWriter{txm: txm}
}

// WithTx implements WriteStore transaction support.
func (w *PostgresWriter) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.WriteTx) error) error {
	return w.txm.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &writerTx{queries{exec: q}})
	})
}

// WithTimeoutTx implements WriteStore transaction support with timeout.
func (w *PostgresWriter) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx domain.WriteTx) error) error {
	return w.txm.WithTimeoutTx(ctx, timeout, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &writerTx{queries{exec: q}})
	})
}

// writerTx is a transaction-scoped store. Reads go through the same
// transaction so handlers observe their own writes.
type writerTx struct {
	queries
}

func (t *writerTx) CreatePerson(ctx context.Context, p domain.Person) (*domain.Person, error) {
	query := psql.Insert(
		im.Into("people", "id", "username", "bio", "image"),
		im.Values(psql.Arg(p.ID), psql.Arg(p.Username), psql.Arg(p.Bio), psql.Arg(p.Image)),
	)
	if _, err := bob.Exec(ctx, t.exec, query); err != nil {
		return nil, wrapError(err, nil)
	}
	return &p, nil
}

// insertEdge never raises a unique violation so a concurrent duplicate does
// not abort the surrounding transaction.
func (t *writerTx) insertEdge(ctx context.Context, stmt string, from, to uuid.UUID) error {
	res, err := t.exec.ExecContext(ctx, stmt, from, to)
	if err != nil {
		return wrapError(err, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrDuplicateEdge
	}
	return nil
}

func (t *writerTx) AddFollow(ctx context.Context, observerID, targetID uuid.UUID) error {
	return t.insertEdge(ctx,
		`INSERT INTO followed_people (observer_id, target_id) VALUES ($1, $2) ON CONFLICT (observer_id, target_id) DO NOTHING`,
		observerID, targetID)
}

func (t *writerTx) RemoveFollow(ctx context.Context, observerID, targetID uuid.UUID) error {
	query := psql.Delete(
		dm.From("followed_people"),
		dm.Where(psql.Quote("observer_id").EQ(psql.Arg(observerID))),
		dm.Where(psql.Quote("target_id").EQ(psql.Arg(targetID))),
	)
	_, err := bob.Exec(ctx, t.exec, query)
	return wrapError(err, nil)
}

func (t *writerTx) AddFavorite(ctx context.Context, personID, articleID uuid.UUID) error {
	return t.insertEdge(ctx,
		`INSERT INTO article_favorites (person_id, article_id) VALUES ($1, $2) ON CONFLICT (person_id, article_id) DO NOTHING`,
		personID, articleID)
}

func (t *writerTx) RemoveFavorite(ctx context.Context, personID, articleID uuid.UUID) error {
	query := psql.Delete(
		dm.From("article_favorites"),
		dm.Where(psql.Quote("person_id").EQ(psql.Arg(personID))),
		dm.Where(psql.Quote("article_id").EQ(psql.Arg(articleID))),
	)
	_, err := bob.Exec(ctx, t.exec, query)
	return wrapError(err, nil)
}

func (t *writerTx) CreateArticle(ctx context.Context, a domain.NewArticle) error {
	query := psql.Insert(
		im.Into("articles", "id", "slug", "title", "description", "body", "author_id", "created_at", "updated_at"),
		im.Values(
			psql.Arg(a.ID),
			psql.Arg(a.Slug),
			psql.Arg(a.Title),
			psql.Arg(a.Description),
			psql.Arg(a.Body),
			psql.Arg(a.AuthorID),
			psql.Arg(a.CreatedAt),
			psql.Arg(a.CreatedAt),
		),
	)
	if _, err := bob.Exec(ctx, t.exec, query); err != nil {
		return wrapError(err, nil)
	}
	return t.insertTags(ctx, a.ID, a.TagList)
}

func (t *writerTx) insertTags(ctx context.Context, articleID uuid.UUID, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	query := psql.Insert(im.Into("article_tags", "article_id", "tag", "position"))
	for i, tag := range tags {
		query.Apply(im.Values(psql.Arg(articleID), psql.Arg(tag), psql.Arg(i)))
	}
	_, err := bob.Exec(ctx, t.exec, query)
	return wrapError(err, nil)
}

// UpdateArticle is left unprepared because the SET clause is dynamic.
func (t *writerTx) UpdateArticle(ctx context.Context, id uuid.UUID, changes domain.ArticleChanges) error {
	query := psql.Update(
		um.Table("articles"),
		um.SetCol("updated_at").To(psql.Arg(changes.UpdatedAt)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	if changes.Slug != nil {
		query.Apply(um.SetCol("slug").To(psql.Arg(*changes.Slug)))
	}
	if changes.Title != nil {
		query.Apply(um.SetCol("title").To(psql.Arg(*changes.Title)))
	}
	if changes.Description != nil {
		query.Apply(um.SetCol("description").To(psql.Arg(*changes.Description)))
	}
	if changes.Body != nil {
		query.Apply(um.SetCol("body").To(psql.Arg(*changes.Body)))
	}

	res, err := bob.Exec(ctx, t.exec, query)
	if err != nil {
		return wrapError(err, nil)
	}
	if err := expectRow(res, domain.ErrArticleNotFound); err != nil {
		return err
	}

	if changes.TagList == nil {
		return nil
	}
	if err := t.deleteWhere(ctx, "article_tags", "article_id", id); err != nil {
		return err
	}
	return t.insertTags(ctx, id, *changes.TagList)
}

func (t *writerTx) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	for _, table := range []string{"comments", "article_favorites", "article_tags"} {
		if err := t.deleteWhere(ctx, table, "article_id", id); err != nil {
			return err
		}
	}

	res, err := bob.Exec(ctx, t.exec, psql.Delete(
		dm.From("articles"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	))
	if err != nil {
		return wrapError(err, nil)
	}
	return expectRow(res, domain.ErrArticleNotFound)
}

func (t *writerTx) CreateComment(ctx context.Context, c domain.NewComment) error {
	query := psql.Insert(
		im.Into("comments", "id", "body", "article_id", "author_id", "created_at", "updated_at"),
		im.Values(
			psql.Arg(c.ID),
			psql.Arg(c.Body),
			psql.Arg(c.ArticleID),
			psql.Arg(c.AuthorID),
			psql.Arg(c.CreatedAt),
			psql.Arg(c.CreatedAt),
		),
	)
	_, err := bob.Exec(ctx, t.exec, query)
	return wrapError(err, nil)
}

func (t *writerTx) DeleteComment(ctx context.Context, id uuid.UUID) error {
	res, err := bob.Exec(ctx, t.exec, psql.Delete(
		dm.From("comments"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	))
	if err != nil {
		return wrapError(err, nil)
	}
	return expectRow(res, domain.ErrCommentNotFound)
}

func (t *writerTx) deleteWhere(ctx context.Context, table, column string, id uuid.UUID) error {
	_, err := bob.Exec(ctx, t.exec, psql.Delete(
		dm.From(table),
		dm.Where(psql.Quote(column).EQ(psql.Arg(id))),
	))
	return wrapError(err, nil)
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
