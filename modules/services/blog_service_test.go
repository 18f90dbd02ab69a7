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

package services_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"conduit/core/blog/adapters/persistence/memory"
	"conduit/core/blog/adapters/rest"
	"conduit/core/blog/domain"
	"conduit/modules/hmac"
	"conduit/modules/middleware"
	"conduit/modules/middleware/ratelimit"
	"conduit/modules/oapi"
	rl "conduit/modules/ratelimit"
	"conduit/modules/server"
	"conduit/modules/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, limit int64) (http.Handler, *hmac.TokenIssuer) {
	t.Helper()
	store := memory.New()
	app := domain.NewApp(store, store)
	_, err := app.RegisterPerson(t.Context(), domain.RegisterPersonCommand{Username: "alice"})
	require.NoError(t, err)

	signer, err := hmac.NewHMACSigner([]byte("test-secret"))
	require.NoError(t, err)
	tokens := hmac.NewTokenIssuer(signer, nil)

	doc, err := middleware.LoadOpenAPI(t.Context(), oapi.FS, oapi.ConduitSpec)
	require.NoError(t, err)

	mux := http.NewServeMux()
	var limiter func(http.Handler) http.Handler
	if limit > 0 {
		policy, err := ratelimit.ParsePolicy(
			rl.LocalFactory(nil),
			&ratelimit.RestHTTPConfig{
				AllowIfNoMatch: true,
				DefaultPolicy: ratelimit.EndpointRule{
					Limit:       limit,
					Window:      time.Minute,
					KeyStrategy: ratelimit.IdentityKeyStrategy,
				},
			},
			ratelimit.RouteFunc(middleware.MuxRoute(mux)),
			map[ratelimit.KeyStrategyId]ratelimit.KeyFunc{
				ratelimit.RemoteIpKeyStrategy: ratelimit.RemoteIpKeyFunc,
				ratelimit.IdentityKeyStrategy: rest.IdentityKeyFunc,
			},
		)
		require.NoError(t, err)
		limiter = ratelimit.NewRateLimitMiddleware(policy)
	}

	svc := services.NewBlogAPIService(rest.NewAPI(app, tokens, nil), doc, limiter)
	srv, err := server.New("127.0.0.1", 8080,
		server.WithMux(mux),
		server.WithGlobalMiddlewares(middleware.Recovery(nil)),
		server.WithServices(svc),
	)
	require.NoError(t, err)
	return srv.Handler(), tokens
}

func send(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestValidation(t *testing.T) {
	h, tokens := newServer(t, 0)
	tok, err := tokens.Issue("alice", time.Hour)
	require.NoError(t, err)

	rec := send(h, http.MethodPost, "/api/articles", tok, `{"article":{"description":"d","body":"b"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "invalidParams")

	rec = send(h, http.MethodGet, "/api/articles?limit=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = send(h, http.MethodGet, "/api/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(h, http.MethodPost, "/api/articles", tok, `{"article":{"title":"Valid","description":"d","body":"b"}}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestPagingBoundsReachTheApplication(t *testing.T) {
	h, _ := newServer(t, 0)

	rec := send(h, http.MethodGet, "/api/articles?limit=101", "", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "articlesCount")

	rec = send(h, http.MethodGet, "/api/articles?limit=-1", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "limit")

	rec = send(h, http.MethodGet, "/api/articles?offset=-5", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "offset")
}

func TestAuthenticationRunsBeforeValidation(t *testing.T) {
	h, _ := newServer(t, 0)

	rec := send(h, http.MethodGet, "/api/tags", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitByIdentity(t *testing.T) {
	h, tokens := newServer(t, 2)
	tok, err := tokens.Issue("alice", time.Hour)
	require.NoError(t, err)

	for range 2 {
		rec := send(h, http.MethodGet, "/api/tags", tok, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := send(h, http.MethodGet, "/api/tags", tok, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// anonymous callers have their own bucket
	rec = send(h, http.MethodGet, "/api/tags", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
