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

package services

import (
	"net/http"

	"conduit/core/blog/adapters/rest"
	"conduit/modules/middleware"
	"conduit/modules/server"

	"github.com/getkin/kin-openapi/openapi3"
)

var _ server.RegistrableService = (*BlogAPIService)(nil)

// BlogAPIService mounts the blog REST adapter and the middlewares it needs.
type BlogAPIService struct {
	api *rest.API
	doc *openapi3.T

	// limiter runs after authentication so it can key by caller
	limiter func(http.Handler) http.Handler
}

// NewBlogAPIService wires api. A nil doc disables request validation and a
// nil limiter disables rate limiting.
func NewBlogAPIService(api *rest.API, doc *openapi3.T, limiter func(http.Handler) http.Handler) *BlogAPIService {
	return &BlogAPIService{api: api, doc: doc, limiter: limiter}
}

func (s *BlogAPIService) Register(mux *http.ServeMux) {
	s.api.Register(mux)
}

// Middlewares returns, outermost first: authentication, rate limiting and
// OpenAPI request validation.
func (s *BlogAPIService) Middlewares() []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{s.api.Authenticate}
	if s.limiter != nil {
		mws = append(mws, s.limiter)
	}
	if s.doc != nil {
		mws = append(mws, middleware.OpenAPIValidation(s.doc))
	}
	return mws
}
