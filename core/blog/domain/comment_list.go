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

import "context"

func (app *Application) ListComments(ctx context.Context, q CommentsQuery) (*CommentsEnvelope, error) {
	v, err := viewer(ctx, app.reader, q.Viewer)
	if err != nil {
		return nil, fail(ctx, "list comments", err)
	}
	a, err := app.reader.GetArticleBySlug(ctx, q.Slug)
	if err != nil {
		return nil, fail(ctx, "list comments", err)
	}
	comments, err := app.reader.ListComments(ctx, a.ID)
	if err != nil {
		return nil, fail(ctx, "list comments", err)
	}
	views, err := commentViews(ctx, app.reader, comments, v)
	if err != nil {
		return nil, fail(ctx, "list comments", err)
	}
	return &CommentsEnvelope{Comments: views}, nil
}
