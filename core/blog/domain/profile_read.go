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
	"log/slog"
)

// ReadProfile resolves a username to its public profile as seen by the viewer.
func (app *Application) ReadProfile(ctx context.Context, q ProfileQuery) (*ProfileEnvelope, error) {
	v, err := viewer(ctx, app.reader, q.Viewer)
	if err != nil {
		return nil, fail(ctx, "read profile", err)
	}
	env, err := readProfile(ctx, app.reader, q.Username, v)
	if err != nil {
		slog.DebugContext(ctx, "read profile failed", slog.String("username", q.Username), slog.Any("error", err))
		return nil, fail(ctx, "read profile", err)
	}
	return env, nil
}
