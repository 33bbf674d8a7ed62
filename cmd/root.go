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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/config"
	"github.com/sandeep-jaiswar/champion/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logPretty bool

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "champion",
	Short: "champion ingests and warehouses NSE/BSE market data",
	Long: `champion is a command line utility for fetching, parsing,
validating, lake-writing, and warehouse-loading Indian exchange (NSE/BSE)
market data: daily equity bhavcopies, bulk/block deals, corporate actions,
index constituents, trading calendars, symbol masters, and quarterly
financials.

champion replaces a hand run-per-subscription model with scheduled,
checkpointed flows: every dataset/exchange combination is a DAG of fetch,
parse, validate, lake-write, and warehouse-load tasks that resumes from its
last checkpoint instead of re-running from scratch after a crash.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.New(cfgFile, cmd, nil)
		if err != nil {
			return err
		}
		logger = logging.New(logLevel, logPretty)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.champion.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "render logs as a human-readable console stream instead of JSON")
}
