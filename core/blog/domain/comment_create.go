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
	"log/slog"
)

func (app *Application) CreateComment(ctx context.Context, cmd CreateCommentCommand) (*CommentEnvelope, error) {
	if cmd.Author.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	if isBlank(cmd.Body) {
		verr := &ValidationError{}
		verr.add("body", "can't be blank")
		return nil, verr
	}

	id, err := newID()
	if err != nil {
		return nil, fail(ctx, "create comment", err)
	}

	var env *CommentEnvelope
	err = app.inTx(ctx, func(ctx context.Context, tx WriteTx) error {
		author, err := actor(ctx, tx, cmd.Author)
		if err != nil {
			return err
		}
		a, err := tx.GetArticleBySlug(ctx, cmd.Slug)
		if err != nil {
			return err
		}
		err = tx.CreateComment(ctx, NewComment{
			ID:        id,
			ArticleID: a.ID,
			AuthorID:  author.ID,
			Body:      cmd.Body,
			CreatedAt: app.now(),
		})
		if err != nil {
			return err
		}
		c, err := tx.GetComment(ctx, id)
		if err != nil {
			return err
		}
		views, err := commentViews(ctx, tx, []Comment{*c}, author)
		if err != nil {
			return err
		}
		env = &CommentEnvelope{Comment: views[0]}
		return nil
	})
	if err != nil {
		return nil, fail(ctx, "create comment", err)
	}

	slog.DebugContext(ctx, "created comment", slog.String("slug", cmd.Slug), slog.String("id", id.String()))
	return env, nil
}
