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

package domain

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugRunes    = 96
	fallbackSlug    = "article"
	maxSlugAttempts = 3
)

// Slugify derives the base slug of a title: accents are stripped, letters are
// lower-cased and every run of other characters collapses into a single dash.
func Slugify(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	out := make([]rune, 0, len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = len(out) > 0
			continue
		}
		if pendingDash {
			if len(out)+1 >= maxSlugRunes {
				break
			}
			out = append(out, '-')
			pendingDash = false
		}
		if len(out) >= maxSlugRunes {
			break
		}
		out = append(out, r)
	}

	if len(out) == 0 {
		return fallbackSlug
	}
	return string(out)
}

// uniqueSlug returns base, or base-2, base-3, ... whichever is free first.
func uniqueSlug(ctx context.Context, rs ReadStore, base string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		exists, err := rs.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// normalizeTags trims tags, drops empty ones and removes duplicates keeping the
// first occurrence.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
