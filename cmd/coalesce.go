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
)

// coalesceCmd merges small Parquet part files within a dataset's
// partitions into fewer, larger ones, the maintenance pass a daily cron of
// single-bulletin writes eventually needs so reads don't open hundreds of
// tiny files.
var coalesceCmd = &cobra.Command{
	Use:   "coalesce <dataset>",
	Short: "Merge small partition files into fewer, larger ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataset := args[0]
		target, _ := cmd.Flags().GetInt64("target-bytes")
		min, _ := cmd.Flags().GetInt64("min-bytes")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		report, err := lake.Coalesce(cmd.Context(), cfg.Lake.Base, dataset, target, min, dryRun)
		if err != nil {
			return fmt.Errorf("coalesce %s: %w", dataset, err)
		}

		logger.Info().
			Int("partitions_scanned", report.PartitionsScanned).
			Int("partitions_merged", report.PartitionsMerged).
			Int("files_removed", report.FilesRemoved).
			Bool("dry_run", report.DryRun).
			Msg("coalesce finished")
		return nil
	},
}

func init() {
	coalesceCmd.Flags().Int64("target-bytes", lake.TargetFileSize, "target size in bytes per merged part file")
	coalesceCmd.Flags().Int64("min-bytes", lake.MinFileSize, "skip partitions whose part files already total at least this many bytes")
	coalesceCmd.Flags().Bool("dry-run", false, "report what would be merged without writing")
	rootCmd.AddCommand(coalesceCmd)
}
