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

	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/lake"
	"github.com/sandeep-jaiswar/champion/internal/lake/mirror"
)

// retentionCmd deletes (or, with --mirror, first uploads then deletes)
// lake partitions older than --retention-days. Separate from coalesce
// since a small-files cleanup pass and a retention-expiry pass run on very
// different schedules (daily vs. weekly/monthly).
var retentionCmd = &cobra.Command{
	Use:   "retention <layer> <dataset>",
	Short: "Delete (optionally mirroring first) partitions past their retention window",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, dataset := args[0], args[1]
		retentionDays, _ := cmd.Flags().GetInt("retention-days")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		var mc *mirror.Client
		if cfg.Lake.MirrorBucket != "" {
			mc = mirror.New(cfg.Lake.MirrorBucket, cfg.Lake.MirrorKeyID, cfg.Lake.MirrorAppKey)
		}

		report, err := lake.Cleanup(cmd.Context(), cfg.Lake.Base, layer, dataset, retentionDays, mc, dryRun)
		if err != nil {
			return fmt.Errorf("retention %s/%s: %w", layer, dataset, err)
		}

		logger.Info().
			Int("partitions_deleted", len(report.PartitionsDeleted)).
			Int("mirrored", len(report.Mirrored)).
			Bool("dry_run", report.DryRun).
			Msg("retention finished")
		return nil
	},
}

func init() {
	retentionCmd.Flags().Int("retention-days", 365, "delete partitions older than this many days")
	retentionCmd.Flags().Bool("dry-run", false, "report what would be deleted without deleting")
	rootCmd.AddCommand(retentionCmd)
}
