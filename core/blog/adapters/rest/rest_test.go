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

package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"conduit/core/blog/adapters/persistence/memory"
	"conduit/core/blog/adapters/rest"
	"conduit/core/blog/domain"
	"conduit/modules/hmac"
	"conduit/modules/middleware/problem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	handler http.Handler
	tokens  *hmac.TokenIssuer
}

func newHarness(t *testing.T, health rest.HealthFunc, usernames ...string) *harness {
	t.Helper()
	store := memory.New()
	app := domain.NewApp(store, store)
	signer, err := hmac.NewHMACSigner([]byte("test-secret"))
	require.NoError(t, err)
	tokens := hmac.NewTokenIssuer(signer, nil)

	api := rest.NewAPI(app, tokens, health)
	mux := http.NewServeMux()
	api.Register(mux)

	for _, u := range usernames {
		_, err := app.RegisterPerson(t.Context(), domain.RegisterPersonCommand{Username: u})
		require.NoError(t, err)
	}
	return &harness{handler: api.Authenticate(mux), tokens: tokens}
}

func (h *harness) token(t *testing.T, username string) string {
	t.Helper()
	tok, err := h.tokens.Issue(username, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a request as username, anonymously when username is empty.
func (h *harness) do(t *testing.T, method, path, username, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set("Authorization", "Token "+h.token(t, username))
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func invalidNames(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	p := decodeInto[problem.Problem](t, rec)
	require.NotNil(t, p.InvalidParams)
	var names []string
	for _, ip := range *p.InvalidParams {
		names = append(names, ip.Name)
	}
	return names
}

func TestProfileNotFound(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/profiles/ghost", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, problem.ContentType, rec.Header().Get("Content-Type"))
}

func TestFollowFlow(t *testing.T) {
	h := newHarness(t, nil, "alice", "bob")

	rec := h.do(t, http.MethodPost, "/api/profiles/bob/follow", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeInto[domain.ProfileEnvelope](t, rec).Profile.Following)

	// following twice is not an error
	rec = h.do(t, http.MethodPost, "/api/profiles/bob/follow", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/profiles/bob", "alice", "")
	assert.True(t, decodeInto[domain.ProfileEnvelope](t, rec).Profile.Following)

	rec = h.do(t, http.MethodGet, "/api/profiles/bob", "", "")
	assert.False(t, decodeInto[domain.ProfileEnvelope](t, rec).Profile.Following)

	rec = h.do(t, http.MethodDelete, "/api/profiles/bob/follow", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeInto[domain.ProfileEnvelope](t, rec).Profile.Following)
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t, nil, "alice", "bob")

	rec := h.do(t, http.MethodPost, "/api/profiles/bob/follow", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token", rec.Header().Get("WWW-Authenticate"))

	expired, err := h.tokens.Issue("alice", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Bearer " + h.token(t, "alice")},
		{"missing token", "Token "},
		{"forged token", "Token abc.def"},
		{"expired token", "Token " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profiles/bob", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			h.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestUnknownCallerIsNotFound(t *testing.T) {
	h := newHarness(t, nil, "bob")

	// a valid token for a person that does not exist
	rec := h.do(t, http.MethodPost, "/api/profiles/bob/follow", "carol", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArticleLifecycle(t *testing.T) {
	h := newHarness(t, nil, "alice", "bob")

	rec := h.do(t, http.MethodPost, "/api/articles", "alice",
		`{"article":{"title":"Hello World","description":"d","body":"b","tagList":["go"," go ","sql"]}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeInto[domain.ArticleEnvelope](t, rec).Article
	assert.Equal(t, "hello-world", created.Slug)
	assert.Equal(t, []string{"go", "sql"}, created.TagList)
	assert.Equal(t, "alice", created.Author.Username)

	rec = h.do(t, http.MethodGet, "/api/articles/hello-world", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/articles/hello-world", "bob", `{"article":{"body":"hijacked"}}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/articles/hello-world", "alice", `{"article":{"title":"Goodbye World"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decodeInto[domain.ArticleEnvelope](t, rec).Article
	assert.Equal(t, "goodbye-world", edited.Slug)
	assert.Equal(t, "b", edited.Body)
	assert.Equal(t, []string{"go", "sql"}, edited.TagList)

	rec = h.do(t, http.MethodDelete, "/api/articles/goodbye-world", "bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/articles/goodbye-world", "alice", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/articles/goodbye-world", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateArticleValidation(t *testing.T) {
	h := newHarness(t, nil, "alice")

	rec := h.do(t, http.MethodPost, "/api/articles", "alice", `{"article":{"title":" ","description":"d","body":""}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.ElementsMatch(t, []string{"title", "body"}, invalidNames(t, rec))

	rec = h.do(t, http.MethodPost, "/api/articles", "alice", `{"article":`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{"body"}, invalidNames(t, rec))

	rec = h.do(t, http.MethodPost, "/api/articles", "", `{"article":{"title":"t","description":"d","body":"b"}}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEditArticleNullMembers(t *testing.T) {
	h := newHarness(t, nil, "alice")
	rec := h.do(t, http.MethodPost, "/api/articles", "alice",
		`{"article":{"title":"Tagged","description":"d","body":"b","tagList":["a","b"]}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/articles/tagged", "alice", `{"article":{"tagList":null}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decodeInto[domain.ArticleEnvelope](t, rec).Article.TagList)

	rec = h.do(t, http.MethodPut, "/api/articles/tagged", "alice", `{"article":{"title":null}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{"title"}, invalidNames(t, rec))
}

func TestListArticlesPaging(t *testing.T) {
	h := newHarness(t, nil, "alice")
	for _, title := range []string{"One", "Two", "Three"} {
		rec := h.do(t, http.MethodPost, "/api/articles", "alice",
			`{"article":{"title":"`+title+`","description":"d","body":"b"}}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := h.do(t, http.MethodGet, "/api/articles?author=alice&limit=2&offset=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeInto[domain.ArticlesEnvelope](t, rec)
	assert.Equal(t, 3, env.ArticlesCount)
	assert.Len(t, env.Articles, 2)

	rec = h.do(t, http.MethodGet, "/api/articles?limit=abc&offset=-1", "", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{"limit"}, invalidNames(t, rec))

	rec = h.do(t, http.MethodGet, "/api/articles?offset=-1", "", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{"offset"}, invalidNames(t, rec))
}

func TestFeedRequiresIdentity(t *testing.T) {
	h := newHarness(t, nil, "alice", "bob")

	rec := h.do(t, http.MethodGet, "/api/articles/feed", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/articles", "bob", `{"article":{"title":"By Bob","description":"d","body":"b"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/profiles/bob/follow", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/articles/feed", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeInto[domain.ArticlesEnvelope](t, rec)
	require.Len(t, env.Articles, 1)
	assert.True(t, env.Articles[0].Author.Following)
}

func TestFavorites(t *testing.T) {
	h := newHarness(t, nil, "alice", "bob")
	rec := h.do(t, http.MethodPost, "/api/articles", "alice", `{"article":{"title":"Fav","description":"d","body":"b"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/articles/fav/favorite", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	a := decodeInto[domain.ArticleEnvelope](t, rec).Article
	assert.True(t, a.Favorited)
	assert.Equal(t, 1, a.FavoritesCount)

	rec = h.do(t, http.MethodDelete, "/api/articles/fav/favorite", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	a = decodeInto[domain.ArticleEnvelope](t, rec).Article
	assert.False(t, a.Favorited)
	assert.Zero(t, a.FavoritesCount)

	rec = h.do(t, http.MethodPost, "/api/articles/missing/favorite", "bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComments(t *testing.T) {
	h := newHarness(t, nil, "alice", "bob")
	rec := h.do(t, http.MethodPost, "/api/articles", "alice", `{"article":{"title":"Talk","description":"d","body":"b"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/articles/talk/comments", "bob", `{"comment":{"body":"nice"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decodeInto[domain.CommentEnvelope](t, rec).Comment
	assert.Equal(t, "bob", comment.Author.Username)

	rec = h.do(t, http.MethodPost, "/api/articles/talk/comments", "bob", `{"comment":{"body":"  "}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/articles/talk/comments", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeInto[domain.CommentsEnvelope](t, rec).Comments, 1)

	rec = h.do(t, http.MethodGet, "/api/articles/missing/comments", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/articles/talk/comments/not-a-uuid", "bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	path := "/api/articles/talk/comments/" + comment.ID.String()
	rec = h.do(t, http.MethodDelete, path, "alice", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodDelete, path, "bob", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTags(t *testing.T) {
	h := newHarness(t, nil, "alice")

	rec := h.do(t, http.MethodGet, "/api/tags", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":[]}`, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/articles", "alice", `{"article":{"title":"T","description":"d","body":"b","tagList":["zig","go"]}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/tags", "", "")
	assert.JSONEq(t, `{"tags":["go","zig"]}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	healthy := newHarness(t, nil)
	assert.Equal(t, http.StatusNoContent, healthy.do(t, http.MethodGet, "/healthz", "", "").Code)

	down := newHarness(t, func(context.Context) error { return errors.New("connection refused") })
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/healthz", "", "").Code)
}

func TestIdentityKeyFunc(t *testing.T) {
	h := newHarness(t, nil)

	var got []string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, string(rest.IdentityKeyFunc(r)))
	})
	signer, err := hmac.NewHMACSigner([]byte("test-secret"))
	require.NoError(t, err)
	api := rest.NewAPI(nil, hmac.NewTokenIssuer(signer, nil), nil)
	chain := api.Authenticate(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	chain.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+h.token(t, "alice"))
	chain.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"ip:192.0.2.1", "user:alice"}, got)
}

func TestArticleDetailsConditionalGet(t *testing.T) {
	h := newHarness(t, nil, "alice", "bob")
	rec := h.do(t, http.MethodPost, "/api/articles", "alice", `{"article":{"title":"Cached","description":"d","body":"b"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/articles/cached", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/cached", nil)
	req.Header.Set("If-None-Match", tag)
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	// a favorite changes the representation
	rec = h.do(t, http.MethodPost, "/api/articles/cached/favorite", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/articles/cached", nil)
	req.Header.Set("If-None-Match", tag)
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, tag, rec.Header().Get("ETag"))
}
