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

package rest

import (
	"net/http"

	"conduit/core/blog/domain"
	"conduit/modules/api/serde"

	"github.com/gofrs/uuid/v5"
)

func (a *API) listComments(w http.ResponseWriter, r *http.Request) {
	env, err := a.app.ListComments(r.Context(), domain.CommentsQuery{
		Slug:   r.PathValue("slug"),
		Viewer: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeConditional(w, r, env)
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	var req newCommentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	env, err := a.app.CreateComment(r.Context(), domain.CreateCommentCommand{
		Slug:   r.PathValue("slug"),
		Body:   req.Comment.Body,
		Author: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusCreated, env)
}

func (a *API) deleteComment(w http.ResponseWriter, r *http.Request) {
	// an id that cannot name a comment is reported like a missing one
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, r, domain.ErrCommentNotFound)
		return
	}
	err = a.app.DeleteComment(r.Context(), domain.DeleteCommentCommand{
		Slug:      r.PathValue("slug"),
		CommentID: id,
		Actor:     identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
