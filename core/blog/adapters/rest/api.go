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
	"context"
	"net/http"

	"conduit/core/blog/domain"
	"conduit/modules/hmac"
)

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

// API is the REST adapter: it translates HTTP requests into Application
// calls and domain errors into problem documents.
type API struct {
	app    *domain.Application
	tokens *hmac.TokenIssuer
	health HealthFunc
}

// NewAPI builds the adapter. A nil health func reports healthy.
func NewAPI(app *domain.Application, tokens *hmac.TokenIssuer, health HealthFunc) *API {
	return &API{app: app, tokens: tokens, health: health}
}

// Register mounts every route on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", a.healthz)
	mux.HandleFunc("GET /api/tags", a.listTags)

	mux.HandleFunc("GET /api/profiles/{username}", a.readProfile)
	mux.HandleFunc("POST /api/profiles/{username}/follow", a.addFollow)
	mux.HandleFunc("DELETE /api/profiles/{username}/follow", a.deleteFollow)

	mux.HandleFunc("GET /api/articles", a.listArticles)
	mux.HandleFunc("POST /api/articles", a.createArticle)
	mux.HandleFunc("GET /api/articles/feed", a.feed)
	mux.HandleFunc("GET /api/articles/{slug}", a.articleDetails)
	mux.HandleFunc("PUT /api/articles/{slug}", a.editArticle)
	mux.HandleFunc("DELETE /api/articles/{slug}", a.deleteArticle)

	mux.HandleFunc("POST /api/articles/{slug}/favorite", a.addFavorite)
	mux.HandleFunc("DELETE /api/articles/{slug}/favorite", a.deleteFavorite)

	mux.HandleFunc("GET /api/articles/{slug}/comments", a.listComments)
	mux.HandleFunc("POST /api/articles/{slug}/comments", a.createComment)
	mux.HandleFunc("DELETE /api/articles/{slug}/comments/{id}", a.deleteComment)
}
