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

// Envelopes are the response shapes of the application layer. Field names follow
// the RealWorld wire format so the transport can encode them as they are.
type (
	Profile struct {
		Username  string `json:"username"`
		Bio       string `json:"bio"`
		Image     string `json:"image"`
		Following bool   `json:"following"`
	}

	ProfileEnvelope struct {
		Profile Profile `json:"profile"`
	}

	ArticleView struct {
		Slug           string    `json:"slug"`
		Title          string    `json:"title"`
		Description    string    `json:"description"`
		Body           string    `json:"body"`
		TagList        []string  `json:"tagList"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
		Favorited      bool      `json:"favorited"`
		FavoritesCount int       `json:"favoritesCount"`
		Author         Profile   `json:"author"`
	}

	ArticleEnvelope struct {
		Article ArticleView `json:"article"`
	}

	ArticlesEnvelope struct {
		Articles      []ArticleView `json:"articles"`
		ArticlesCount int           `json:"articlesCount"`
	}

	CommentView struct {
		ID        uuid.UUID `json:"id"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
		Body      string    `json:"body"`
		Author    Profile   `json:"author"`
	}

	CommentEnvelope struct {
		Comment CommentView `json:"comment"`
	}

	CommentsEnvelope struct {
		Comments []CommentView `json:"comments"`
	}

	TagsEnvelope struct {
		Tags []string `json:"tags"`
	}
)

func profileOf(p Person, following bool) Profile {
	return Profile{
		Username:  p.Username,
		Bio:       p.Bio,
		Image:     p.Image,
		Following: following,
	}
}

func articleViewOf(a Article, favorited, following bool) ArticleView {
	tags := a.TagList
	if tags == nil {
		tags = []string{}
	}
	return ArticleView{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        tags,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favorited:      favorited,
		FavoritesCount: a.FavoritesCount,
		Author:         profileOf(a.Author, following),
	}
}

func commentViewOf(c Comment, following bool) CommentView {
	return CommentView{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Body:      c.Body,
		Author:    profileOf(c.Author, following),
	}
}
