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
	"time"

	"github.com/gofrs/uuid/v5"
)

type (
	// Identity is the caller identity handed in by the transport. The core only
	// cares about the username and whether one is present.
	Identity struct {
		Username string
	}

	Person struct {
		ID       uuid.UUID
		Username string
		Bio      string
		Image    string
	}

	// Article is the aggregate as loaded by the store: author, tags and the
	// favorites count are always eager-loaded.
	Article struct {
		ID             uuid.UUID
		Slug           string
		Title          string
		Description    string
		Body           string
		Author         Person
		TagList        []string
		FavoritesCount int
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	Comment struct {
		ID        uuid.UUID
		ArticleID uuid.UUID
		Body      string
		Author    Person
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// ArticleFilter is applied conjunctively; zero-valued fields are ignored.
	ArticleFilter struct {
		Tag         string
		Author      string
		FavoritedBy string
		// FollowedBy restricts to authors followed by this person (feed).
		FollowedBy uuid.UUID

		Limit  int
		Offset int
	}

	NewArticle struct {
		ID          uuid.UUID
		Slug        string
		Title       string
		Description string
		Body        string
		AuthorID    uuid.UUID
		TagList     []string
		CreatedAt   time.Time
	}

	// ArticleChanges holds the columns an edit touches. Nil means untouched.
	ArticleChanges struct {
		Slug        *string
		Title       *string
		Description *string
		Body        *string
		TagList     *[]string
		UpdatedAt   time.Time
	}

	NewComment struct {
		ID        uuid.UUID
		ArticleID uuid.UUID
		AuthorID  uuid.UUID
		Body      string
		CreatedAt time.Time
	}
)

var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool {
	return i.Username == ""
}

// IsEmpty reports whether the changes would not touch any column.
func (c ArticleChanges) IsEmpty() bool {
	return c.Slug == nil && c.Title == nil && c.Description == nil && c.Body == nil && c.TagList == nil
}
