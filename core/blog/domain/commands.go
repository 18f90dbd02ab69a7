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

import "github.com/gofrs/uuid/v5"

// Queries.
type (
	ProfileQuery struct {
		Username string
		Viewer   Identity
	}

	ListArticlesQuery struct {
		Tag         string
		Author      string
		FavoritedBy string
		Limit       int
		Offset      int
		Viewer      Identity
	}

	FeedQuery struct {
		Limit  int
		Offset int
		Viewer Identity
	}

	ArticleQuery struct {
		Slug   string
		Viewer Identity
	}

	CommentsQuery struct {
		Slug   string
		Viewer Identity
	}
)

// Commands.
type (
	RegisterPersonCommand struct {
		Username string
		Bio      string
		Image    string
	}

	FollowCommand struct {
		Target   string
		Observer Identity
	}

	FavoriteCommand struct {
		Slug  string
		Actor Identity
	}

	CreateArticleCommand struct {
		Title       string
		Description string
		Body        string
		TagList     []string
		Author      Identity
	}

	// EditArticleCommand carries a partial update: nil fields are left untouched.
	EditArticleCommand struct {
		Slug        string
		Title       *string
		Description *string
		Body        *string
		TagList     *[]string
		Actor       Identity
	}

	DeleteArticleCommand struct {
		Slug  string
		Actor Identity
	}

	CreateCommentCommand struct {
		Slug   string
		Body   string
		Author Identity
	}

	DeleteCommentCommand struct {
		Slug      string
		CommentID uuid.UUID
		Actor     Identity
	}
)
