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

package memory

import (
	"bytes"
	"context"
	"slices"
	"sort"

	"conduit/core/blog/domain"

	"github.com/gofrs/uuid/v5"
)

func (s *state) GetPersonByUsername(ctx context.Context, username string) (*domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := s.usernames[username]
	if !ok {
		return nil, domain.ErrPersonNotFound
	}
	p := s.people[id]
	return &p, nil
}

func (s *state) GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := s.slugs[slug]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	a := s.article(s.articles[id])
	return &a, nil
}

func (s *state) SlugExists(ctx context.Context, slug string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := s.slugs[slug]
	return ok, nil
}

func (s *state) ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	matched := make([]articleRow, 0, len(s.articles))
	for _, row := range s.articles {
		if s.matches(row, filter) {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].createdAt.After(matched[j].createdAt)
		}
		return bytes.Compare(matched[i].id.Bytes(), matched[j].id.Bytes()) > 0
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	page := make([]domain.Article, 0, end-start)
	for _, row := range matched[start:end] {
		page = append(page, s.article(row))
	}
	return page, total, nil
}

func (s *state) matches(row articleRow, filter domain.ArticleFilter) bool {
	if filter.Tag != "" && !slices.Contains(row.tags, filter.Tag) {
		return false
	}
	if filter.Author != "" {
		authorID, ok := s.usernames[filter.Author]
		if !ok || authorID != row.authorID {
			return false
		}
	}
	if filter.FavoritedBy != "" {
		personID, ok := s.usernames[filter.FavoritedBy]
		if !ok {
			return false
		}
		if _, ok := s.favorites[edge{from: personID, to: row.id}]; !ok {
			return false
		}
	}
	if !filter.FollowedBy.IsNil() {
		if _, ok := s.follows[edge{from: filter.FollowedBy, to: row.authorID}]; !ok {
			return false
		}
	}
	return true
}

func (s *state) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, ok := s.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c := s.comment(row)
	return &c, nil
}

func (s *state) ListComments(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := make([]commentRow, 0)
	for _, row := range s.comments {
		if row.articleID == articleID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].createdAt.Equal(rows[j].createdAt) {
			return rows[i].createdAt.Before(rows[j].createdAt)
		}
		return bytes.Compare(rows[i].id.Bytes(), rows[j].id.Bytes()) < 0
	})

	out := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.comment(row))
	}
	return out, nil
}

func (s *state) FollowedAmong(ctx context.Context, observerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return among(ctx, s.follows, observerID, targetIDs)
}

func (s *state) FavoritedAmong(ctx context.Context, personID uuid.UUID, articleIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return among(ctx, s.favorites, personID, articleIDs)
}

func among(ctx context.Context, edges map[edge]struct{}, from uuid.UUID, to []uuid.UUID) (map[uuid.UUID]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(to))
	for _, id := range to {
		if _, ok := edges[edge{from: from, to: id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *state) ListTags(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, row := range s.articles {
		for _, t := range row.tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags, nil
}

func (s *state) article(row articleRow) domain.Article {
	count := 0
	for e := range s.favorites {
		if e.to == row.id {
			count++
		}
	}
	return domain.Article{
		ID:             row.id,
		Slug:           row.slug,
		Title:          row.title,
		Description:    row.description,
		Body:           row.body,
		Author:         s.people[row.authorID],
		TagList:        slices.Clone(row.tags),
		FavoritesCount: count,
		CreatedAt:      row.createdAt,
		UpdatedAt:      row.updatedAt,
	}
}

func (s *state) comment(row commentRow) domain.Comment {
	return domain.Comment{
		ID:        row.id,
		ArticleID: row.articleID,
		Body:      row.body,
		Author:    s.people[row.authorID],
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}
}
