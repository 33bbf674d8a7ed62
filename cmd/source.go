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

// source replaces teacher's subscribe/unsubscribe/enable trio. Teacher
// subscribed to one of an open set of data vendors; champion ingests a
// fixed, closed set of exchange/dataset pairs (cmd/sources.go), so there's
// nothing to "pick a provider" for — what's left to configure per source is
// just a name, a cron schedule, and whether it's active, which is exactly
// what the sources table holds.
package cmd

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/state"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Configure which exchange/dataset sources run on a schedule",
}

// sourceAddCmd walks through naming, scheduling, and activating one of the
// standard sources, mirroring teacher's subscribe wizard shape (dataset
// select -> schedule input -> confirm) without the provider-config step,
// since a standard source needs no per-instance credentials.
var sourceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Interactively add or update a source's schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := state.Connect(ctx, cfg.State.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect state store: %w", err)
		}
		defer st.Close()

		options := make([]huh.Option[string], 0, len(standardSources))
		bySelection := map[string]source{}
		for _, s := range standardSources {
			key := s.Exchange + "/" + s.Dataset
			bySelection[key] = s
			options = append(options, huh.NewOption(key, key))
		}

		var (
			selection string
			name      string
			schedule  string
			active    bool
			confirmed bool
		)

		minuteChoice := rand.Intn(12) * 5
		hourChoice := rand.Intn(9)
		schedule = fmt.Sprintf("%d %d * * 1-5", minuteChoice, hourChoice)
		active = true

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Which exchange/dataset source do you want to schedule?").
					Options(options...).
					Value(&selection),
				huh.NewInput().
					Title("What should this source be named?").
					Value(&name),
				huh.NewInput().
					Title("What cron schedule should it run on? (IST, five-field)").
					Value(&schedule),
				huh.NewConfirm().
					Title("Active?").
					Value(&active),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("run wizard: %w", err)
		}

		src := bySelection[selection]
		if name == "" {
			name = selection
		}

		keyword := func(s string) string {
			return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s\n\nExchange: %s\nDataset: %s\nName: %s\nSchedule: %s\nActive: %v\n",
			lipgloss.NewStyle().Bold(true).Render("NEW SOURCE"),
			keyword(src.Exchange), keyword(src.Dataset), keyword(name), keyword(schedule), active)
		fmt.Println(
			lipgloss.NewStyle().
				Width(60).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(1, 2).
				Render(sb.String()),
		)

		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().Title("Save this source?").Value(&confirmed),
			),
		)
		if err := confirmForm.Run(); err != nil {
			return fmt.Errorf("run wizard: %w", err)
		}
		if !confirmed {
			log.Info().Msg("not saving source")
			return nil
		}

		id, err := st.SaveSource(ctx, state.Source{
			Name:     name,
			Exchange: src.Exchange,
			Dataset:  src.Dataset,
			Schedule: schedule,
			Active:   active,
		})
		if err != nil {
			return fmt.Errorf("save source: %w", err)
		}
		log.Info().Str("id", id.String()).Msg("source saved")
		return nil
	},
}

// sourceSetActiveCmd is the shared implementation behind "enable"/"disable".
func sourceSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <exchange> <dataset>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exchange, dataset := args[0], args[1]

			st, err := state.Connect(ctx, cfg.State.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect state store: %w", err)
			}
			defer st.Close()

			active_, err := st.ActiveSources(ctx)
			if err != nil {
				return fmt.Errorf("load active sources: %w", err)
			}
			var existing *state.Source
			for i := range active_ {
				if active_[i].Exchange == exchange && active_[i].Dataset == dataset {
					existing = &active_[i]
					break
				}
			}
			if existing == nil {
				existing = &state.Source{Name: exchange + "/" + dataset, Exchange: exchange, Dataset: dataset, Schedule: "0 3 * * 1-5"}
			}
			existing.Active = active
			if _, err := st.SaveSource(ctx, *existing); err != nil {
				return fmt.Errorf("save source: %w", err)
			}
			log.Info().Str("exchange", exchange).Str("dataset", dataset).Bool("active", active).Msg("source updated")
			return nil
		},
	}
}

func init() {
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceSetActiveCmd("enable", "Activate a source's schedule", true))
	sourceCmd.AddCommand(sourceSetActiveCmd("disable", "Deactivate a source's schedule", false))
	rootCmd.AddCommand(sourceCmd)
}
