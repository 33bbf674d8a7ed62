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

	"github.com/sandeep-jaiswar/champion/internal/reporter"
	"github.com/sandeep-jaiswar/champion/internal/state"
)

// reportCmd renders a daily ingestion report (run outcomes, row counts per
// schema, volume anomalies against a trailing baseline) or, with --trend,
// a multi-day failure-rate series.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a daily ingestion report or a trailing trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := state.Connect(ctx, cfg.State.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect state store: %w", err)
		}
		defer st.Close()

		rep := reporter.New(st, cfg.Quarantine.Dir)

		trendDays, _ := cmd.Flags().GetInt("trend")
		if trendDays > 0 {
			series, err := rep.Trend(ctx, trendDays)
			if err != nil {
				return fmt.Errorf("compute trend: %w", err)
			}
			for _, pt := range series.Points {
				fmt.Printf("%s runs=%d rows=%d failed=%d failure_rate=%.2f%%\n",
					pt.Date.Format("2006-01-02"), pt.Runs, pt.RowsTotal, pt.RowsFailed, pt.FailureRate*100)
			}
			return nil
		}

		dateFlag, _ := cmd.Flags().GetString("date")
		date := time.Now().UTC()
		if dateFlag != "" {
			date, err = time.Parse("2006-01-02", dateFlag)
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
		}

		report, err := rep.DailyReport(ctx, date)
		if err != nil {
			return fmt.Errorf("build daily report: %w", err)
		}

		out, err := reporter.Render(report)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("date", "", "logical date to report on, YYYY-MM-DD (default: today)")
	reportCmd.Flags().Int("trend", 0, "render a failure-rate trend over this many trailing days instead of a daily report")
	rootCmd.AddCommand(reportCmd)
}
