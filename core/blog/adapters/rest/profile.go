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

	"conduit/core/blog/domain"
	"conduit/modules/api/serde"
)

func (a *API) readProfile(w http.ResponseWriter, r *http.Request) {
	env, err := a.app.ReadProfile(r.Context(), domain.ProfileQuery{
		Username: r.PathValue("username"),
		Viewer:   identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}

func (a *API) addFollow(w http.ResponseWriter, r *http.Request) {
	env, err := a.app.AddFollow(r.Context(), domain.FollowCommand{
		Target:   r.PathValue("username"),
		Observer: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}

func (a *API) deleteFollow(w http.ResponseWriter, r *http.Request) {
	env, err := a.app.DeleteFollow(r.Context(), domain.FollowCommand{
		Target:   r.PathValue("username"),
		Observer: identityOf(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, env)
}
