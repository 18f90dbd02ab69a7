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
	"fmt"
	"time"

	"conduit/modules/hmac"

	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue API tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <username>",
	Short: "Sign a token for username with HMAC_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := hmac.NewHMACSigner([]byte(config.HMAC.Secret))
		if err != nil {
			return err
		}
		ttl := config.HMAC.TokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}
		token, err := hmac.NewTokenIssuer(signer, nil).Issue(args[0], ttl)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime, defaults to HMAC_TOKEN_TTL")
	tokenCmd.AddCommand(tokenIssueCmd)
}
