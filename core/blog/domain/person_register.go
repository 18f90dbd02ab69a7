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
	"errors"
	"log/slog"
	"strings"
)

func (app *Application) RegisterPerson(ctx context.Context, cmd RegisterPersonCommand) (*ProfileEnvelope, error) {
	username := strings.TrimSpace(cmd.Username)
	verr := &ValidationError{}
	if username == "" {
		verr.add("username", "can't be blank")
	} else if strings.ContainsAny(username, " /") {
		verr.add("username", "must not contain spaces or slashes")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, fail(ctx, "register person", err)
	}

	var created *Person
	err = app.inTx(ctx, func(ctx context.Context, tx WriteTx) error {
		p, err := tx.CreatePerson(ctx, Person{ID: id, Username: username, Bio: cmd.Bio, Image: cmd.Image})
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if errors.Is(err, ErrDuplicatePerson) {
		slog.DebugContext(ctx, "duplicate username", slog.String("username", username))
		return nil, ErrDuplicatePerson
	}
	if err != nil {
		return nil, fail(ctx, "register person", err)
	}

	slog.InfoContext(ctx, "registered person", slog.String("username", created.Username), slog.String("id", created.ID.String()))
	return &ProfileEnvelope{Profile: profileOf(*created, false)}, nil
}
