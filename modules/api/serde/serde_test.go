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

package serde_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"conduit/modules/api/serde"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestParseJsonBody(t *testing.T) {
	var p payload
	require.NoError(t, serde.ParseJsonBody(body(`{"name":"alice"}`), &p))
	assert.Equal(t, "alice", p.Name)

	assert.ErrorIs(t, serde.ParseJsonBody(body(``), &p), serde.ErrEmptyBody)
	assert.Error(t, serde.ParseJsonBody(body(`{"name":"a","extra":1}`), &p))
	assert.Error(t, serde.ParseJsonBody(body(`{"name":"a"}{"name":"b"}`), &p))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	serde.WriteJSON(rec, 201, payload{Name: "bob"})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"bob"}`, rec.Body.String())
}
