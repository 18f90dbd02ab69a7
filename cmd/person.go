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

package cmd

import (
	"context"
	"encoding/json"

	"conduit/core/blog/domain"
	"conduit/modules/appconfig"
	"conduit/modules/clock"

	"github.com/spf13/cobra"
)

var (
	personBio   string
	personImage string
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage people",
}

// Registration belongs to an identity provider; this command seeds people
// that tokens can then be issued for.
var personAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Register a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if config.Store.Driver != appconfig.StorePostgres {
			return errMemoryStore
		}
		store, err := openStore(ctx, config)
		if err != nil {
			return err
		}
		defer store.Close(context.WithoutCancel(ctx))

		app := domain.NewApp(store.reader, store.writer,
			domain.WithClock(clock.RealClockProvider()),
			domain.WithTxTimeout(config.Store.TxTimeout),
		)
		env, err := app.RegisterPerson(ctx, domain.RegisterPersonCommand{
			Username: args[0],
			Bio:      personBio,
			Image:    personImage,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	},
}

func init() {
	personAddCmd.Flags().StringVar(&personBio, "bio", "", "short biography")
	personAddCmd.Flags().StringVar(&personImage, "image", "", "avatar URL")
	personCmd.AddCommand(personAddCmd)
}
