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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/reporter"
	"github.com/sandeep-jaiswar/champion/internal/state"
)

// infoCmd summarizes champion's configured sources and today's ingestion
// outcome as rendered markdown, champion's analogue of teacher's
// library.Summary document.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display a summary of configured sources and today's ingestion run",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		st, err := state.Connect(ctx, cfg.State.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to state store")
		}
		defer st.Close()

		active, err := st.ActiveSources(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load active sources")
		}
		lastUpdated, err := st.LastUpdated(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load last updated time")
		}

		b := strings.Builder{}
		b.WriteString("# champion\n\n")
		if lastUpdated.IsZero() {
			b.WriteString("No sources have been configured yet. Run `champion source` to add one.\n")
		} else {
			fmt.Fprintf(&b, "Sources last updated: %s\n\n", lastUpdated.Format(time.RFC3339))
			fmt.Fprintf(&b, "## Active sources (%d)\n\n", len(active))
			for _, src := range active {
				fmt.Fprintf(&b, "- **%s/%s** — schedule `%s`\n", src.Exchange, src.Dataset, src.Schedule)
			}
		}

		rep := reporter.New(st, cfg.Quarantine.Dir)
		report, err := rep.DailyReport(ctx, time.Now().UTC())
		if err != nil {
			log.Warn().Err(err).Msg("could not build today's ingestion report")
		} else {
			out, err := reporter.Render(report)
			if err != nil {
				log.Fatal().Err(err).Msg("could not render today's report")
			}
			b.WriteString("\n## Today's ingestion\n\n")
			b.WriteString(out)
		}

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		out, err := r.Render(b.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render summary document")
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
