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
	"net/http"
	"strconv"

	"conduit/core/blog/domain"
	"conduit/modules/api/serde"

	"github.com/oapi-codegen/nullable"
)

type (
	newArticleRequest struct {
		Article struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			Body        string   `json:"body"`
			TagList     []string `json:"tagList"`
		} `json:"article"`
	}

	// updateArticleRequest distinguishes absent members from explicit nulls.
	// A null text member is treated as blank; a null tagList clears the tags.
	updateArticleRequest struct {
		Article struct {
			Title       nullable.Nullable[string]   `json:"title"`
			Description nullable.Nullable[string]   `json:"description"`
			Body        nullable.Nullable[string]   `json:"body"`
			TagList     nullable.Nullable[[]string] `json:"tagList"`
		} `json:"article"`
	}

	newCommentRequest struct {
		Comment struct {
			Body string `json:"body"`
		} `json:"comment"`
	}
)

func decode[T any](r *http.Request, v *T) error {
	if err := serde.ParseJsonBody(r.Body, v); err != nil {
		return invalidParam("body", "malformed JSON document")
	}
	return nil
}

func textChange(n nullable.Nullable[string]) *string {
	if !n.IsSpecified() {
		return nil
	}
	if n.IsNull() {
		return serde.Ptr("")
	}
	return serde.Ptr(n.MustGet())
}

func tagsChange(n nullable.Nullable[[]string]) *[]string {
	if !n.IsSpecified() {
		return nil
	}
	if n.IsNull() {
		return &[]string{}
	}
	tags := n.MustGet()
	if tags == nil {
		tags = []string{}
	}
	return &tags
}

func (req updateArticleRequest) command(slug string, actor domain.Identity) domain.EditArticleCommand {
	return domain.EditArticleCommand{
		Slug:        slug,
		Title:       textChange(req.Article.Title),
		Description: textChange(req.Article.Description),
		Body:        textChange(req.Article.Body),
		TagList:     tagsChange(req.Article.TagList),
		Actor:       actor,
	}
}

// page reads limit and offset. Absent values are zero and left to the
// Application defaults.
func page(r *http.Request) (limit, offset int, err error) {
	verr := &domain.ValidationError{}
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			verr.Fields = append(verr.Fields, domain.InvalidField{Name: "limit", Reason: "must be an integer"})
		}
	}
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			verr.Fields = append(verr.Fields, domain.InvalidField{Name: "offset", Reason: "must be an integer"})
		}
	}
	if len(verr.Fields) > 0 {
		return 0, 0, verr
	}
	return limit, offset, nil
}
