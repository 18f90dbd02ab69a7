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

// DeleteFavorite removes the actor's favorite of the article if it exists.
func (app *Application) DeleteFavorite(ctx context.Context, cmd FavoriteCommand) (*ArticleEnvelope, error) {
	return app.toggleFavorite(ctx, "delete favorite", cmd, func(ctx context.Context, tx WriteTx, p *Person, a *Article) error {
		return tx.RemoveFavorite(ctx, p.ID, a.ID)
	})
}
