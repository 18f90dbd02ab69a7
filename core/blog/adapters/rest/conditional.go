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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"conduit/modules/etag"
	"conduit/modules/middleware/problem"
)

// representation is an encoded response body versioned by its digest.
type representation []byte

func (b representation) V() string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:12])
}

// writeConditional writes v as JSON with an ETag, or 304 when the client
// already holds the same representation. Views depend on the caller, hence
// the Vary header.
func writeConditional(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		problem.Write(w, problem.Internal("server error"))
		return
	}
	body = append(body, '\n')

	tag := etag.ETag(representation(body))
	h := w.Header()
	h.Set("ETag", tag)
	h.Add("Vary", "Authorization")
	if etag.Match(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
