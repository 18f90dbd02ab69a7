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
	"errors"
	"log/slog"
	"net/http"

	"conduit/core/blog/domain"
	"conduit/modules/middleware/problem"
)

// writeError maps an Application error onto a problem document by its kind.
// Internal causes are logged by the domain and never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		problem.Write(w, problem.NotFound(err.Error()))
	case domain.KindForbidden:
		problem.Write(w, problem.Forbidden(err.Error()))
	case domain.KindUnauthenticated:
		unauthorized(w, err.Error())
	case domain.KindValidation:
		problem.Write(w, validationProblem(err))
	case domain.KindConflict:
		problem.Write(w, problem.Conflict(err.Error()))
	case domain.KindCanceled:
		slog.DebugContext(r.Context(), "request canceled", slog.String("url", r.URL.Path))
		problem.Write(w, problem.ServiceUnavailable("request canceled"))
	default:
		problem.Write(w, problem.Internal("server error"))
	}
}

func validationProblem(err error) *problem.Problem {
	p := problem.UnprocessableEntity("validation failed")
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			problem.WithInvalidParam(f.Name, f.Reason)(p)
		}
	}
	return p
}

func invalidParam(name, reason string) error {
	return &domain.ValidationError{Fields: []domain.InvalidField{{Name: name, Reason: reason}}}
}
