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
	"log/slog"
	"os"

	"conduit/modules/appconfig"

	"github.com/spf13/cobra"
)

// config is loaded once by the root command before any subcommand runs.
var config *appconfig.Config

var rootCmd = &cobra.Command{
	Use:           "conduit",
	Short:         "conduit - profiles, articles, comments and tags over HTTP",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load()
		if err != nil {
			return err
		}
		config = cfg
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
		slog.DebugContext(cmd.Context(), "config loaded",
			slog.String("env", cfg.Env),
			slog.String("store", string(cfg.Store.Driver)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, personCmd, tokenCmd)
}

// Execute runs the command line against ctx, which is canceled on shutdown
// signals.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
