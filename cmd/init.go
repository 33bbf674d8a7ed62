// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/state"
)

// initConfig is the subset of Config written to $HOME/.champion.toml,
// mirroring teacher's library-name-and-DSN init wizard but scoped to
// champion's state database and lake directory instead of a named library
// record.
type initConfig struct {
	State struct {
		DatabaseURL string `toml:"database_url"`
	} `toml:"state"`
	Lake struct {
		Base string `toml:"base"`
	} `toml:"lake"`
}

// initCmd gathers the state database DSN and lake directory, runs the
// initial migration, and persists both to a config file so later commands
// don't need the flags repeated on every invocation.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database and storage configuration and run initial migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		var ic initConfig
		ic.Lake.Base = "./data/lake"

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL state database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&ic.State.DatabaseURL).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
				huh.NewInput().
					Title("Where should the data lake live on disk?").
					Value(&ic.Lake.Base),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}

		log.Info().Msg("running initial state database migration")
		if err := state.Migrate(ic.State.DatabaseURL); err != nil {
			return err
		}
		log.Info().Msg("state database migrated")

		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFN := filepath.Join(home, ".champion.toml")

		configData, err := toml.Marshal(ic)
		if err != nil {
			return err
		}
		if err := os.WriteFile(configFN, configData, 0o644); err != nil {
			return err
		}
		log.Info().Str("config_file", configFN).Msg("champion initialized")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
