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

	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/parser"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

// validateCmd runs one already-downloaded bulletin through its parser and
// validator without touching the lake, the warehouse, or any checkpoint —
// the dev-loop tool for testing a parser change against a sample file
// before wiring it back into a scheduled flow.
var validateCmd = &cobra.Command{
	Use:   "validate <exchange> <dataset> <path>",
	Short: "Parse and validate one bulletin file without writing anywhere",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		exchange, dataset, path := args[0], args[1], args[2]

		dateFlag, _ := cmd.Flags().GetString("date")
		logicalDate := clock.Real{}.Now()
		if dateFlag != "" {
			var err error
			logicalDate, err = time.Parse("2006-01-02", dateFlag)
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
		}

		var newParser func(clk clock.Clock) parser.Parser
		for _, s := range standardSources {
			if s.Exchange == exchange && s.Dataset == dataset {
				newParser = s.NewParser
				break
			}
		}
		if newParser == nil {
			return fmt.Errorf("no standard parser registered for %s/%s", exchange, dataset)
		}

		ctx := cmd.Context()
		b, err := newParser(clock.Real{}).Parse(ctx, path, parser.SourceDescriptor{Exchange: exchange, Dataset: dataset}, logicalDate)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		if b == nil {
			fmt.Println("parsed to zero rows")
			return nil
		}
		fmt.Printf("parsed %d rows\n", b.Len())

		result, err := validator.Validate(ctx, b, dataset, validator.WithFailOnErrors(false))
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}

		fmt.Printf("rules applied: %v\n", result.RulesApplied)
		fmt.Printf("total=%d passed=%d critical=%d warnings=%d\n",
			result.Total, result.Passed, result.Critical, result.Warnings)
		for _, sample := range result.Samples {
			fmt.Printf("  [%s] rule=%s row=%d %s\n", sample.Severity, sample.Rule, sample.RowIndex, sample.Detail)
		}
		if result.Critical > 0 {
			return fmt.Errorf("%d critical violation(s)", result.Critical)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("date", "", "logical date to parse as, YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(validateCmd)
}
