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
	"context"
	"fmt"
	"slices"

	"conduit/core/blog/domain"

	"github.com/gofrs/uuid/v5"
)

func (s *state) CreatePerson(ctx context.Context, p domain.Person) (*domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := s.usernames[p.Username]; ok {
		return nil, domain.ErrDuplicatePerson
	}
	s.people[p.ID] = p
	s.usernames[p.Username] = p.ID
	return &p, nil
}

func (s *state) AddFollow(ctx context.Context, observerID, targetID uuid.UUID) error {
	if err := s.requirePeople(ctx, observerID, targetID); err != nil {
		return err
	}
	return addEdge(s.follows, edge{from: observerID, to: targetID})
}

func (s *state) RemoveFollow(ctx context.Context, observerID, targetID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(s.follows, edge{from: observerID, to: targetID})
	return nil
}

func (s *state) AddFavorite(ctx context.Context, personID, articleID uuid.UUID) error {
	if err := s.requirePeople(ctx, personID); err != nil {
		return err
	}
	if _, ok := s.articles[articleID]; !ok {
		return fmt.Errorf("favorite references unknown article %s", articleID)
	}
	return addEdge(s.favorites, edge{from: personID, to: articleID})
}

func (s *state) RemoveFavorite(ctx context.Context, personID, articleID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(s.favorites, edge{from: personID, to: articleID})
	return nil
}

func (s *state) CreateArticle(ctx context.Context, a domain.NewArticle) error {
	if err := s.requirePeople(ctx, a.AuthorID); err != nil {
		return err
	}
	if _, ok := s.slugs[a.Slug]; ok {
		return domain.ErrDuplicateSlug
	}
	s.articles[a.ID] = articleRow{
		id:          a.ID,
		slug:        a.Slug,
		title:       a.Title,
		description: a.Description,
		body:        a.Body,
		authorID:    a.AuthorID,
		tags:        slices.Clone(a.TagList),
		createdAt:   a.CreatedAt,
		updatedAt:   a.CreatedAt,
	}
	s.slugs[a.Slug] = a.ID
	return nil
}

func (s *state) UpdateArticle(ctx context.Context, id uuid.UUID, changes domain.ArticleChanges) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, ok := s.articles[id]
	if !ok {
		return domain.ErrArticleNotFound
	}
	if changes.Slug != nil && *changes.Slug != row.slug {
		if _, taken := s.slugs[*changes.Slug]; taken {
			return domain.ErrDuplicateSlug
		}
		delete(s.slugs, row.slug)
		row.slug = *changes.Slug
		s.slugs[row.slug] = id
	}
	if changes.Title != nil {
		row.title = *changes.Title
	}
	if changes.Description != nil {
		row.description = *changes.Description
	}
	if changes.Body != nil {
		row.body = *changes.Body
	}
	if changes.TagList != nil {
		row.tags = slices.Clone(*changes.TagList)
	}
	row.updatedAt = changes.UpdatedAt
	s.articles[id] = row
	return nil
}

func (s *state) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, ok := s.articles[id]
	if !ok {
		return domain.ErrArticleNotFound
	}
	for cid, c := range s.comments {
		if c.articleID == id {
			delete(s.comments, cid)
		}
	}
	for e := range s.favorites {
		if e.to == id {
			delete(s.favorites, e)
		}
	}
	delete(s.slugs, row.slug)
	delete(s.articles, id)
	return nil
}

func (s *state) CreateComment(ctx context.Context, c domain.NewComment) error {
	if err := s.requirePeople(ctx, c.AuthorID); err != nil {
		return err
	}
	if _, ok := s.articles[c.ArticleID]; !ok {
		return fmt.Errorf("comment references unknown article %s", c.ArticleID)
	}
	s.comments[c.ID] = commentRow{
		id:        c.ID,
		articleID: c.ArticleID,
		authorID:  c.AuthorID,
		body:      c.Body,
		createdAt: c.CreatedAt,
		updatedAt: c.CreatedAt,
	}
	return nil
}

func (s *state) DeleteComment(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := s.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}

// requirePeople emulates the foreign keys on people(id).
func (s *state) requirePeople(ctx context.Context, ids ...uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := s.people[id]; !ok {
			return fmt.Errorf("reference to unknown person %s", id)
		}
	}
	return nil
}

func addEdge(edges map[edge]struct{}, e edge) error {
	if _, ok := edges[e]; ok {
		return domain.ErrDuplicateEdge
	}
	edges[e] = struct{}{}
	return nil
}
