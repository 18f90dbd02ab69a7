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

package etag_test

import (
	"testing"

	"conduit/modules/etag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type version string

func (v version) V() string { return string(v) }

func TestRoundTrip(t *testing.T) {
	tag := etag.ETag(version("abc"))
	assert.Equal(t, `"v:abc"`, tag)

	v, err := etag.ParseETag(tag)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	v, err = etag.ParseETag(`W/"v:abc"`)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = etag.ParseETag(`"abc"`)
	assert.Error(t, err)
	_, err = etag.ParseETag(`v:abc`)
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	tag := etag.ETag(version("abc"))

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{`"v:abc"`, true},
		{`W/"v:abc"`, true},
		{`"v:old", "v:abc"`, true},
		{`"v:old"`, false},
		{`garbage`, false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, etag.Match(tt.header, tag))
		})
	}
}
