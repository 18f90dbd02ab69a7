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
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

// queries implements domain.ReadStore on top of any executor, a pool
// connection or an open transaction.
type queries struct {
	exec db.Querier
}

func (q queries) GetPersonByUsername(ctx context.Context, username string) (*domain.Person, error) {
	query := psql.Select(
		sm.Columns("id", "username", "bio", "image"),
		sm.From("people"),
		sm.Where(psql.Quote("username").EQ(psql.Arg(username))),
	)

	row, err := bob.One(ctx, q.exec, query, scan.StructMapper[PersonRow]())
	if err != nil {
		return nil, wrapError(err, domain.ErrPersonNotFound)
	}
	p := row.toPerson()
	return &p, nil
}

func (q queries) GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	query := psql.Select(
		sm.Columns(articleColumns...),
		sm.From(articleSelectFromClause),
		sm.Where(psql.Quote("a", "slug").EQ(psql.Arg(slug))),
	)

	row, err := bob.One(ctx, q.exec, query, scan.StructMapper[ArticleRow]())
	if err != nil {
		return nil, wrapError(err, domain.ErrArticleNotFound)
	}

	tags, err := q.tagsOf(ctx, []uuid.UUID{row.ID})
	if err != nil {
		return nil, err
	}
	a := row.toArticle(tags[row.ID])
	return &a, nil
}

func (q queries) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := psql.Select(
		sm.Columns("COUNT(*)"),
		sm.From("articles"),
		sm.Where(psql.Quote("slug").EQ(psql.Arg(slug))),
	)

	count, err := bob.One(ctx, q.exec, query, scan.SingleColumnMapper[int])
	if err != nil {
		return false, wrapError(err, nil)
	}
	return count > 0, nil
}

func articleFilters(filter domain.ArticleFilter) []bob.Mod[*dialect.SelectQuery] {
	var mods []bob.Mod[*dialect.SelectQuery]
	if filter.Tag != "" {
		mods = append(mods, sm.Where(psql.Raw(
			"EXISTS (SELECT 1 FROM article_tags AS t WHERE t.article_id = a.id AND t.tag = ?)", filter.Tag)))
	}
	if filter.Author != "" {
		mods = append(mods, sm.Where(psql.Quote("p", "username").EQ(psql.Arg(filter.Author))))
	}
	if filter.FavoritedBy != "" {
		mods = append(mods, sm.Where(psql.Raw(
			"EXISTS (SELECT 1 FROM article_favorites AS af JOIN people AS fp ON fp.id = af.person_id WHERE af.article_id = a.id AND fp.username = ?)",
			filter.FavoritedBy)))
	}
	if !filter.FollowedBy.IsNil() {
		mods = append(mods, sm.Where(psql.Raw(
			"EXISTS (SELECT 1 FROM followed_people AS fw WHERE fw.target_id = a.author_id AND fw.observer_id = ?)",
			filter.FollowedBy)))
	}
	return mods
}

func (q queries) ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, int, error) {
	filters := articleFilters(filter)

	listMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(articleColumns...),
		sm.From(articleSelectFromClause),
	}
	listMods = append(listMods, filters...)
	listMods = append(listMods,
		sm.OrderBy("a.created_at").Desc(),
		sm.OrderBy("a.id").Desc(),
		sm.Offset(filter.Offset),
	)
	if filter.Limit > 0 {
		listMods = append(listMods, sm.Limit(filter.Limit))
	}

	rows, err := bob.All(ctx, q.exec, psql.Select(listMods...), scan.StructMapper[ArticleRow]())
	if err != nil {
		return nil, 0, wrapError(err, nil)
	}

	countMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("COUNT(*)"),
		sm.From(articleSelectFromClause),
	}
	countMods = append(countMods, filters...)

	total, err := bob.One(ctx, q.exec, psql.Select(countMods...), scan.SingleColumnMapper[int])
	if err != nil {
		return nil, 0, wrapError(err, nil)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	tags, err := q.tagsOf(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, r.toArticle(tags[r.ID]))
	}
	return articles, total, nil
}

// tagsOf loads the ordered tag lists of the given articles in one query.
func (q queries) tagsOf(ctx context.Context, articleIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(articleIDs))
	if len(articleIDs) == 0 {
		return out, nil
	}

	query := psql.Select(
		sm.Columns("article_id", "tag"),
		sm.From("article_tags"),
		sm.Where(psql.Quote("article_id").In(args(articleIDs)...)),
		sm.OrderBy("article_id"),
		sm.OrderBy("position"),
	)

	rows, err := bob.All(ctx, q.exec, query, scan.StructMapper[TagRow]())
	if err != nil {
		return nil, wrapError(err, nil)
	}
	for _, r := range rows {
		out[r.ArticleID] = append(out[r.ArticleID], r.Tag)
	}
	return out, nil
}

func (q queries) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := psql.Select(
		sm.Columns(commentColumns...),
		sm.From("comments AS c JOIN people AS p ON p.id = c.author_id"),
		sm.Where(psql.Quote("c", "id").EQ(psql.Arg(id))),
	)

	row, err := bob.One(ctx, q.exec, query, scan.StructMapper[CommentRow]())
	if err != nil {
		return nil, wrapError(err, domain.ErrCommentNotFound)
	}
	c := row.toComment()
	return &c, nil
}

func (q queries) ListComments(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	query := psql.Select(
		sm.Columns(commentColumns...),
		sm.From("comments AS c JOIN people AS p ON p.id = c.author_id"),
		sm.Where(psql.Quote("c", "article_id").EQ(psql.Arg(articleID))),
		sm.OrderBy("c.created_at"),
		sm.OrderBy("c.id"),
	)

	rows, err := bob.All(ctx, q.exec, query, scan.StructMapper[CommentRow]())
	if err != nil {
		return nil, wrapError(err, nil)
	}
	comments := make([]domain.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.toComment())
	}
	return comments, nil
}

func (q queries) FollowedAmong(ctx context.Context, observerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return q.among(ctx, "followed_people", "observer_id", "target_id", observerID, targetIDs)
}

func (q queries) FavoritedAmong(ctx context.Context, personID uuid.UUID, articleIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return q.among(ctx, "article_favorites", "person_id", "article_id", personID, articleIDs)
}

// among returns which of the to ids have an edge from the given id in table.
func (q queries) among(ctx context.Context, table, fromCol, toCol string, from uuid.UUID, to []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(to))
	if len(to) == 0 {
		return out, nil
	}

	query := psql.Select(
		sm.Columns(toCol),
		sm.From(table),
		sm.Where(psql.Quote(fromCol).EQ(psql.Arg(from))),
		sm.Where(psql.Quote(toCol).In(args(to)...)),
	)

	ids, err := bob.All(ctx, q.exec, query, scan.SingleColumnMapper[uuid.UUID])
	if err != nil {
		return nil, wrapError(err, nil)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (q queries) ListTags(ctx context.Context) ([]string, error) {
	query := psql.Select(
		sm.Columns("tag"),
		sm.From("article_tags"),
		sm.GroupBy("tag"),
		sm.OrderBy("tag"),
	)

	tags, err := bob.All(ctx, q.exec, query, scan.SingleColumnMapper[string])
	if err != nil {
		return nil, wrapError(err, nil)
	}
	return tags, nil
}

func args(ids []uuid.UUID) []bob.Expression {
	out := make([]bob.Expression, 0, len(ids))
	for _, id := range ids {
		out = append(out, psql.Arg(id))
	}
	return out
}
