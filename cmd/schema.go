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
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/datasets"
)

// schemaCmd prints the canonical shape of one dataset, or every dataset,
// straight from internal/datasets.Registry: required columns, dedup key,
// lake partitioning, and the warehouse DDL a new consumer would read before
// writing a query against it.
var schemaCmd = &cobra.Command{
	Use:   "schema [dataset]",
	Short: "Show a dataset's required columns, dedup key, partitions, and DDL",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)

		builder := strings.Builder{}

		if len(args) > 0 {
			def, ok := datasets.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown dataset %q", args[0])
			}
			writeDatasetDoc(&builder, def)
		} else {
			builder.WriteString("# Datasets\n")
			names := make([]string, 0, len(datasets.Registry))
			for name := range datasets.Registry {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				def, _ := datasets.Get(name)
				writeDatasetDoc(&builder, def)
			}
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render schema document")
		}
		fmt.Print(out)
		return nil
	},
}

func writeDatasetDoc(b *strings.Builder, def *datasets.Definition) {
	fmt.Fprintf(b, "\n## %s\n\n", def.Name)
	fmt.Fprintf(b, "- **Required columns:** %s\n", strings.Join(def.RequiredColumns, ", "))
	fmt.Fprintf(b, "- **Dedup key:** %s\n", strings.Join(def.DedupKey, ", "))
	fmt.Fprintf(b, "- **Lake partitions:** %s\n", strings.Join(def.LakePartitions, "/"))
	fmt.Fprintf(b, "- **Sort key:** %s\n", strings.Join(def.SortKey, ", "))
	fmt.Fprintf(b, "\n```sql\n%s\n```\n", def.WarehouseDDL)
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
