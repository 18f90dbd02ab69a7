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

package middleware

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"conduit/modules/middleware/problem"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

// LoadOpenAPI reads and validates the OpenAPI document at path inside fsys.
func LoadOpenAPI(ctx context.Context, fsys fs.FS, path string) (*openapi3.T, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// OpenAPIValidation rejects requests that do not match doc before they reach
// a handler. Malformed parameters get 400, schema violations in the body get
// 422, and unknown routes get 404. Every response is a problem document.
func OpenAPIValidation(doc *openapi3.T) func(http.Handler) http.Handler {
	opts := &nethttpmiddleware.Options{
		Options: openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			status := eopts.StatusCode
			if status == 0 {
				status = http.StatusBadRequest
			}
			if status == http.StatusBadRequest && isBodyViolation(err) {
				status = http.StatusUnprocessableEntity
			}
			if status == http.StatusNotFound || status == http.StatusMethodNotAllowed {
				problem.Write(w, problem.OfStatus(status, "no such route"))
				return
			}

			p := problem.OfStatus(status, "validation failed")
			var multi openapi3.MultiError
			if errors.As(err, &multi) {
				for _, item := range multi {
					addValidationDetail(p, item)
				}
			} else {
				addValidationDetail(p, err)
			}
			problem.Write(w, p)
		},
	}
	return nethttpmiddleware.OapiRequestValidatorWithOptions(doc, opts)
}

func addValidationDetail(p *problem.Problem, err error) {
	var re *openapi3filter.RequestError
	if errors.As(err, &re) {
		var se *openapi3.SchemaError
		if errors.As(re.Err, &se) {
			if re.Parameter != nil {
				problem.WithInvalidParam(re.Parameter.Name, se.Reason)(p)
				return
			}
			problem.WithInvalidParam(fieldOf(se), se.Reason)(p)
			return
		}
		name := "body"
		if re.Parameter != nil {
			name = re.Parameter.Name
		}
		problem.WithInvalidParam(name, safeReason(re.Reason))(p)
		return
	}

	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		problem.WithInvalidParam(fieldOf(se), se.Reason)(p)
		return
	}

	var sre *openapi3filter.SecurityRequirementsError
	if errors.As(err, &sre) {
		problem.WithInvalidParam("authorization", "missing or invalid credentials")(p)
		return
	}
	problem.WithInvalidParam("request", "invalid value")(p)
}

// fieldOf names the offending member by its JSON pointer below the request
// envelope, e.g. "article.title".
func fieldOf(se *openapi3.SchemaError) string {
	field := strings.Join(se.JSONPointer(), ".")
	if field == "" {
		return "body"
	}
	return field
}

func isBodyViolation(err error) bool {
	var re *openapi3filter.RequestError
	if errors.As(err, &re) {
		if re.RequestBody != nil {
			return true
		}
		var se *openapi3.SchemaError
		return re.Parameter == nil && errors.As(re.Err, &se)
	}
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			if isBodyViolation(item) {
				return true
			}
		}
	}
	return false
}

// safeReason keeps reasons generic so input is never reflected back.
func safeReason(reason string) string {
	lower := strings.ToLower(reason)
	switch {
	case reason == "":
		return "invalid value"
	case strings.Contains(lower, "doesn't match schema"):
		return "doesn't match schema"
	case strings.Contains(lower, "must be one of"):
		return reason
	case strings.Contains(lower, "value is required"):
		return "value is required"
	default:
		return "invalid value"
	}
}
