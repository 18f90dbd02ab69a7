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
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"conduit/modules/telemetry"
)

// RouteFunc resolves the route pattern a request will be dispatched to.
type RouteFunc func(*http.Request) string

// MuxRoute resolves routes against mux without serving the request. The
// method prefix of Go 1.22 patterns is dropped, unmatched requests resolve
// to "".
func MuxRoute(mux *http.ServeMux) RouteFunc {
	return func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		if i := strings.IndexByte(pattern, ' '); i >= 0 {
			pattern = pattern[i+1:]
		}
		return pattern
	}
}

// responseRecorder wraps http.ResponseWriter to capture status code and response size
type responseRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.statusCode = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytesWritten += int64(n)
	return n, err
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Telemetry records request metrics and writes one access log line per
// request. It should be the outermost middleware so statuses written by
// validation, rate limiting or recovery are observed too. A nil metrics
// disables recording but keeps the access log.
func Telemetry(metrics *telemetry.HTTPMetrics, route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			endpoint := r.URL.Path
			if route != nil {
				if p := route(r); p != "" {
					endpoint = p
				}
			}

			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r)
			elapsed := time.Since(start)

			slog.DebugContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("endpoint", endpoint),
				slog.Int("status", recorder.statusCode),
				slog.Duration("elapsed", elapsed),
			)

			if metrics == nil {
				return
			}
			metrics.RecordRequest(
				r.Context(),
				r.Method,
				endpoint,
				strconv.Itoa(recorder.statusCode),
				float64(elapsed.Microseconds())/1000,
				recorder.bytesWritten,
			)
		})
	}
}
