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
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/calendar"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/flow"
	"github.com/sandeep-jaiswar/champion/internal/metrics"
	"github.com/sandeep-jaiswar/champion/internal/state"
	"github.com/sandeep-jaiswar/champion/internal/warehouse"
)

const backfillDateLayout = "2006-01-02"

// backfillCmd replays historical logical dates through a flow, the
// "reprocess last quarter" operation the daily `run` command has no slot
// for. With --resume it ignores --from and starts the day after the flow's
// last successful run instead.
var backfillCmd = &cobra.Command{
	Use:   "backfill <exchange> <dataset>",
	Short: "Replay a flow across a range of historical logical dates",
	Long: `backfill runs one dataset/exchange flow once per trading day between
--from and --until (inclusive), stopping at the first day whose run fails so
a broken upstream format never silently skips ahead and leaves a gap.

Pass --resume instead of --from to pick up the day after the flow's last
successful run.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		exchange, dataset := args[0], args[1]

		var src source
		found := false
		for _, s := range standardSources {
			if s.Exchange == exchange && s.Dataset == dataset {
				src, found = s, true
				break
			}
		}
		if !found {
			return fmt.Errorf("no standard source registered for %s/%s", exchange, dataset)
		}

		fromFlag, _ := cmd.Flags().GetString("from")
		untilFlag, _ := cmd.Flags().GetString("until")
		resume, _ := cmd.Flags().GetBool("resume")
		force, _ := cmd.Flags().GetBool("force")

		clk := clock.Real{}
		st, err := state.Connect(ctx, cfg.State.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect state store: %w", err)
		}
		defer st.Close()

		var wh *warehouse.Client
		if cfg.Warehouse.Host != "" {
			addr := fmt.Sprintf("%s:%d", cfg.Warehouse.Host, cfg.Warehouse.Port)
			wh, err = warehouse.Connect(ctx, addr, cfg.Warehouse.Database, cfg.Warehouse.User, cfg.Warehouse.Password)
			if err != nil {
				return fmt.Errorf("connect warehouse: %w", err)
			}
			defer wh.Close()
		}

		cals := loadCalendars(ctx, wh)
		cal, ok := cals[exchange]
		if !ok {
			cal = calendar.New(exchange)
		}

		p := newPipeline(clk, cfg, cals, wh, st, force)
		orch := flow.NewOrchestrator(st, clk, metrics.NopSink{}, logger)

		f, err := buildFlow(src, p)
		if err != nil {
			return err
		}

		var from time.Time
		if resume {
			from, err = orch.ResumeFrom(ctx, f.Name, cal)
			if err != nil {
				return fmt.Errorf("resolve resume point: %w", err)
			}
			if from.IsZero() {
				return fmt.Errorf("flow %s has never run successfully, pass --from instead of --resume", f.Name)
			}
		} else {
			if fromFlag == "" {
				return fmt.Errorf("--from is required unless --resume is set")
			}
			from, err = time.Parse(backfillDateLayout, fromFlag)
			if err != nil {
				return fmt.Errorf("parse --from: %w", err)
			}
		}

		until := clk.Now()
		if untilFlag != "" {
			until, err = time.Parse(backfillDateLayout, untilFlag)
			if err != nil {
				return fmt.Errorf("parse --until: %w", err)
			}
		}

		results, err := orch.Backfill(ctx, f, cal, from, until)
		logger.Info().Int("completed", len(results)).Str("flow", f.Name).Msg("backfill finished")
		if err != nil {
			return fmt.Errorf("backfill stopped after %d day(s): %w", len(results), err)
		}
		return nil
	},
}

func init() {
	backfillCmd.Flags().String("from", "", "first logical date to replay, YYYY-MM-DD (required unless --resume)")
	backfillCmd.Flags().String("until", "", "last logical date to replay, YYYY-MM-DD (default: today)")
	backfillCmd.Flags().Bool("resume", false, "start the day after the flow's last successful run instead of --from")
	backfillCmd.Flags().Bool("force", false, "reload a partition even if internal/state already recorded it as loaded")
	rootCmd.AddCommand(backfillCmd)
}
