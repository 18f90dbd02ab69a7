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

package etag

import (
	"fmt"
	"strconv"
	"strings"
)

const prefix = "v:"

type ETaggable interface {
	V() string
}

// ETag returns the quoted entity tag of obj, ready to be used as an ETag
// header value.
func ETag(obj ETaggable) string {
	return strconv.Quote(prefix + obj.V())
}

// ParseETag extracts the version from a strong or weak entity tag.
func ParseETag(etag string) (string, error) {
	etag = strings.TrimPrefix(strings.TrimSpace(etag), "W/")
	unquoted, err := strconv.Unquote(etag)
	if err != nil {
		return "", fmt.Errorf("invalid etag format")
	}
	if !strings.HasPrefix(unquoted, prefix) {
		return "", fmt.Errorf("invalid etag format")
	}
	return strings.TrimPrefix(unquoted, prefix), nil
}

// Match reports whether an If-None-Match header value selects etag, using
// weak comparison as GET requires.
func Match(ifNoneMatch, etag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	want, err := ParseETag(etag)
	if err != nil {
		return false
	}
	for candidate := range strings.SplitSeq(ifNoneMatch, ",") {
		if v, err := ParseETag(candidate); err == nil && v == want {
			return true
		}
	}
	return false
}
