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
)

func (a *API) listArticles(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	env, err := a.app.ListArticles(r.Context(), domain.ListArticlesQuery{
		Tag:         q.Get("tag"),
		Author:      q.Get("author"),
		FavoritedBy: q.Get("favorited"),
		Limit:       limit,
		Offset:      offset,
		Viewer:      identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}

func (a *API) feed(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	env, err := a.app.Feed(r.Context(), domain.FeedQuery{
		Limit:  limit,
		Offset: offset,
		Viewer: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}

func (a *API) articleDetails(w http.ResponseWriter, r *http.Request) {
	env, err := a.app.ArticleDetails(r.Context(), domain.ArticleQuery{
		Slug:   r.PathValue("slug"),
		Viewer: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeConditional(w, r, env)
}

func (a *API) createArticle(w http.ResponseWriter, r *http.Request) {
	var req newArticleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	env, err := a.app.CreateArticle(r.Context(), domain.CreateArticleCommand{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
		Author:      identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusCreated, env)
}

func (a *API) editArticle(w http.ResponseWriter, r *http.Request) {
	var req updateArticleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	env, err := a.app.EditArticle(r.Context(), req.command(r.PathValue("slug"), identityOf(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}

func (a *API) deleteArticle(w http.ResponseWriter, r *http.Request) {
	err := a.app.DeleteArticle(r.Context(), domain.DeleteArticleCommand{
		Slug:  r.PathValue("slug"),
		Actor: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) addFavorite(w http.ResponseWriter, r *http.Request) {
	env, err := a.app.AddFavorite(r.Context(), domain.FavoriteCommand{
		Slug:  r.PathValue("slug"),
		Actor: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}

func (a *API) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	env, err := a.app.DeleteFavorite(r.Context(), domain.FavoriteCommand{
		Slug:  r.PathValue("slug"),
		Actor: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}
