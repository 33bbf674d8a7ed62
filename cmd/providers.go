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

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// providersCmd lists the exchanges champion ingests from, and the
// registered sources for one exchange when named. champion has a closed
// set of exchanges rather than teacher's open set of data vendors, so this
// renders cmd/sources.go's standardSources table instead of a
// provider.Map lookup.
var providersCmd = &cobra.Command{
	Use:   "providers [exchange]",
	Short: "List exchanges champion ingests from, or sources for one exchange",
	Run: func(cmd *cobra.Command, args []string) {
		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)

		builder := strings.Builder{}

		if len(args) > 0 {
			exchange := strings.ToUpper(args[0])
			builder.WriteString(fmt.Sprintf("# %s\n\n## Registered sources\n", exchange))
			for _, s := range sourcesForExchange(exchange) {
				builder.WriteString(fmt.Sprintf("- **%s** from `%s`\n", s.Dataset, s.Host))
			}
			for _, ms := range standardMacroSeries {
				builder.WriteString(fmt.Sprintf("- **macro_indicator** series `%s` from `%s`\n", ms.SeriesID, ms.Host))
			}
		} else {
			builder.WriteString("# Exchanges\n")
			for _, exchange := range []string{"NSE", "BSE"} {
				builder.WriteString(fmt.Sprintf("\n## %s\n", exchange))
				for _, s := range sourcesForExchange(exchange) {
					builder.WriteString(fmt.Sprintf("- %s\n", s.Dataset))
				}
			}
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render providers document")
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
