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

// Package memory is an in-process store with the same semantics as the
// Postgres adapter. Transactions are serialized and applied to a private copy
// of the state which replaces the shared one on commit.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"conduit/core/blog/domain"

	"github.com/gofrs/uuid/v5"
)

var (
	_ domain.ReadStore  = (*Store)(nil)
	_ domain.WriteStore = (*Store)(nil)
	_ domain.WriteTx    = (*state)(nil)
)

type (
	Store struct {
		mu sync.RWMutex
		st *state
	}

	edge struct {
		from uuid.UUID
		to   uuid.UUID
	}

	articleRow struct {
		id          uuid.UUID
		slug        string
		title       string
		description string
		body        string
		authorID    uuid.UUID
		tags        []string
		createdAt   time.Time
		updatedAt   time.Time
	}

	commentRow struct {
		id        uuid.UUID
		articleID uuid.UUID
		authorID  uuid.UUID
		body      string
		createdAt time.Time
		updatedAt time.Time
	}

	state struct {
		people    map[uuid.UUID]domain.Person
		usernames map[string]uuid.UUID
		follows   map[edge]struct{}
		favorites map[edge]struct{}
		articles  map[uuid.UUID]articleRow
		slugs     map[string]uuid.UUID
		comments  map[uuid.UUID]commentRow
	}
)

func New() *Store {
	return &Store{st: &state{
		people:    map[uuid.UUID]domain.Person{},
		usernames: map[string]uuid.UUID{},
		follows:   map[edge]struct{}{},
		favorites: map[edge]struct{}{},
		articles:  map[uuid.UUID]articleRow{},
		slugs:     map[string]uuid.UUID{},
		comments:  map[uuid.UUID]commentRow{},
	}}
}

func (s *state) clone() *state {
	articles := make(map[uuid.UUID]articleRow, len(s.articles))
	for id, a := range s.articles {
		a.tags = slices.Clone(a.tags)
		articles[id] = a
	}
	return &state{
		people:    maps.Clone(s.people),
		usernames: maps.Clone(s.usernames),
		follows:   maps.Clone(s.follows),
		favorites: maps.Clone(s.favorites),
		articles:  articles,
		slugs:     maps.Clone(s.slugs),
		comments:  maps.Clone(s.comments),
	}
}

// WithTx runs fn against a copy of the state. The copy becomes visible only
// when fn succeeds and ctx is still live.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.WriteTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx domain.WriteTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.WithTx(ctx, fn)
}

func (s *Store) GetPersonByUsername(ctx context.Context, username string) (*domain.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetPersonByUsername(ctx, username)
}

func (s *Store) GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetArticleBySlug(ctx, slug)
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.SlugExists(ctx, slug)
}

func (s *Store) ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListArticles(ctx, filter)
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetComment(ctx, id)
}

func (s *Store) ListComments(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListComments(ctx, articleID)
}

func (s *Store) FollowedAmong(ctx context.Context, observerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FollowedAmong(ctx, observerID, targetIDs)
}

func (s *Store) FavoritedAmong(ctx context.Context, personID uuid.UUID, articleIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FavoritedAmong(ctx, personID, articleIDs)
}

func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListTags(ctx)
}
