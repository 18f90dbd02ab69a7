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
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("not allowed to modify this resource")
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidData     = errors.New("invalid data provided")
	ErrConflict        = errors.New("conflicting resource")
	ErrUnhandled       = errors.New("unexpected error")

	ErrPersonNotFound  = fmt.Errorf("person %w", ErrNotFound)
	ErrArticleNotFound = fmt.Errorf("article %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)

	ErrDuplicatePerson = fmt.Errorf("%w: username already taken", ErrConflict)
	// ErrConcurrentUpdate is returned when a unit of work lost a serialization race.
	ErrConcurrentUpdate = fmt.Errorf("%w: concurrent update, retry", ErrConflict)

	// ErrDuplicateEdge is returned by stores when a follow or favorite pair
	// already exists. Add handlers treat it as success.
	ErrDuplicateEdge = errors.New("edge already exists")
	// ErrDuplicateSlug is returned by stores when an article slug is taken.
	ErrDuplicateSlug = fmt.Errorf("%w: slug already taken", ErrConflict)
)

type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindForbidden       ErrorKind = "forbidden"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindValidation      ErrorKind = "validation"
	KindConflict        ErrorKind = "conflict"
	KindCanceled        ErrorKind = "canceled"
	KindInternal        ErrorKind = "internal"
)

// KindOf classifies err into one of a fixed set of kinds.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrInvalidData):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case isCanceled(err):
		return KindCanceled
	default:
		return KindInternal
	}
}

type (
	InvalidField struct {
		Name   string
		Reason string
	}

	// ValidationError lists the offending fields of a rejected command.
	ValidationError struct {
		Fields []InvalidField
	}
)

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Name+": "+f.Reason)
	}
	return ErrInvalidData.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidData
}

func (e *ValidationError) add(name, reason string) {
	e.Fields = append(e.Fields, InvalidField{Name: name, Reason: reason})
}

// orNil returns nil when no field was rejected.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
