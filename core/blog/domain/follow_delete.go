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

import "context"

// DeleteFollow removes the observer→target edge if it exists.
func (app *Application) DeleteFollow(ctx context.Context, cmd FollowCommand) (*ProfileEnvelope, error) {
	if cmd.Observer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	var env *ProfileEnvelope
	err := app.inTx(ctx, func(ctx context.Context, tx WriteTx) error {
		observer, err := actor(ctx, tx, cmd.Observer)
		if err != nil {
			return err
		}
		target, err := tx.GetPersonByUsername(ctx, cmd.Target)
		if err != nil {
			return err
		}
		if err := tx.RemoveFollow(ctx, observer.ID, target.ID); err != nil {
			return err
		}
		env, err = readProfile(ctx, tx, target.Username, observer)
		return err
	})
	if err != nil {
		return nil, fail(ctx, "delete follow", err)
	}
	return env, nil
}
