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
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"conduit/core/blog/domain"
	"conduit/modules/hmac"
	"conduit/modules/middleware/problem"
	"conduit/modules/middleware/ratelimit"
	rl "conduit/modules/ratelimit"
)

const tokenScheme = "Token"

type identityKey struct{}

func withIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// identityOf returns the caller attached by Authenticate, anonymous otherwise.
func identityOf(r *http.Request) domain.Identity {
	if id, ok := r.Context().Value(identityKey{}).(domain.Identity); ok {
		return id
	}
	return domain.Anonymous
}

// Authenticate resolves "Authorization: Token <token>" into a caller
// identity. Requests without the header proceed anonymously. A malformed,
// forged or expired token is rejected with 401 even on public routes.
func (a *API) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, tokenScheme) || strings.TrimSpace(token) == "" {
			unauthorized(w, "malformed authorization header")
			return
		}

		claims, err := a.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			detail := "invalid token"
			if errors.Is(err, hmac.ErrExpiredToken) {
				detail = "expired token"
			}
			slog.DebugContext(r.Context(), "token rejected", slog.Any("error", err))
			unauthorized(w, detail)
			return
		}

		ctx := withIdentity(r.Context(), domain.Identity{Username: claims.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", tokenScheme)
	problem.Write(w, problem.Unauthorized(detail))
}

// IdentityKeyFunc keys rate limits by username, falling back to the remote
// address for anonymous callers. It must run after Authenticate.
func IdentityKeyFunc(r *http.Request) rl.Key {
	if id := identityOf(r); !id.IsAnonymous() {
		return rl.Key("user:" + id.Username)
	}
	if ip := ratelimit.RemoteIpKeyFunc(r); ip != "" {
		return "ip:" + ip
	}
	return ""
}
