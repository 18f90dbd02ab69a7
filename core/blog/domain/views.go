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
	"context"

	"github.com/gofrs/uuid/v5"
)

func readProfile(ctx context.Context, rs ReadStore, username string, v *Person) (*ProfileEnvelope, error) {
	target, err := rs.GetPersonByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	following := false
	if v != nil {
		followed, err := rs.FollowedAmong(ctx, v.ID, []uuid.UUID{target.ID})
		if err != nil {
			return nil, err
		}
		following = followed[target.ID]
	}
	return &ProfileEnvelope{Profile: profileOf(*target, following)}, nil
}

func articleEnvelope(ctx context.Context, rs ReadStore, a *Article, v *Person) (*ArticleEnvelope, error) {
	views, err := articleViews(ctx, rs, []Article{*a}, v)
	if err != nil {
		return nil, err
	}
	return &ArticleEnvelope{Article: views[0]}, nil
}

// articleViews annotates a page of articles with viewer-relative flags using
// one batched lookup per relation.
func articleViews(ctx context.Context, rs ReadStore, articles []Article, v *Person) ([]ArticleView, error) {
	favorited := map[uuid.UUID]bool{}
	following := map[uuid.UUID]bool{}

	if v != nil && len(articles) > 0 {
		articleIDs := make([]uuid.UUID, 0, len(articles))
		authorIDs := make([]uuid.UUID, 0, len(articles))
		for _, a := range articles {
			articleIDs = append(articleIDs, a.ID)
			authorIDs = append(authorIDs, a.Author.ID)
		}

		var err error
		if favorited, err = rs.FavoritedAmong(ctx, v.ID, articleIDs); err != nil {
			return nil, err
		}
		if following, err = rs.FollowedAmong(ctx, v.ID, uniqueIDs(authorIDs)); err != nil {
			return nil, err
		}
	}

	views := make([]ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, articleViewOf(a, favorited[a.ID], following[a.Author.ID]))
	}
	return views, nil
}

func commentViews(ctx context.Context, rs ReadStore, comments []Comment, v *Person) ([]CommentView, error) {
	following := map[uuid.UUID]bool{}
	if v != nil && len(comments) > 0 {
		authorIDs := make([]uuid.UUID, 0, len(comments))
		for _, c := range comments {
			authorIDs = append(authorIDs, c.Author.ID)
		}
		var err error
		if following, err = rs.FollowedAmong(ctx, v.ID, uniqueIDs(authorIDs)); err != nil {
			return nil, err
		}
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentViewOf(c, following[c.Author.ID]))
	}
	return views, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
