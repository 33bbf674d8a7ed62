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
package warehouse

import (
	"time"

	"github.com/sandeep-jaiswar/champion/internal/batch"
)

// ColumnMap declares, for one table, the ordered canonical-column list to
// bind into ClickHouse's native batch insert — generalizing teacher's
// struct-tag-driven data.Eod/data.Asset SaveDB methods into a declarative
// mapping table that works across every dataset's batch.Row shape instead
// of one hardcoded struct per table.
type ColumnMap struct {
	Table   string
	Columns []string
	Kinds   map[string]batch.ColumnKind
}

// Values extracts row's values in ColumnMap.Columns order, coercing
// date/timestamp fields to time.Time and defaulting absent optional columns
// to their ClickHouse-friendly zero value.
func (cm *ColumnMap) Values(row batch.Row) []any {
	out := make([]any, len(cm.Columns))
	for i, col := range cm.Columns {
		v, ok := row[col]
		if !ok || v == nil {
			out[i] = zeroFor(cm.Kinds[col])
			continue
		}
		if t, isTime := v.(time.Time); isTime {
			out[i] = t.UTC()
			continue
		}
		out[i] = v
	}
	return out
}

func zeroFor(kind batch.ColumnKind) any {
	switch kind {
	case batch.KindInt64:
		return int64(0)
	case batch.KindFloat64:
		return float64(0)
	case batch.KindDate, batch.KindTimestamp:
		return time.Time{}
	default:
		return ""
	}
}

// ColumnMapFor derives a ColumnMap directly from a canonical batch.Schema,
// appending the envelope fields every table carries (source, event_time,
// ingest_time) after the dataset's own declared columns.
func ColumnMapFor(table string, schema *batch.Schema) *ColumnMap {
	kinds := map[string]batch.ColumnKind{}
	columns := make([]string, 0, len(schema.Columns)+2)
	for _, c := range schema.Columns {
		if c.Name == "source" {
			continue
		}
		kinds[c.Name] = c.Kind
		columns = append(columns, c.Name)
	}
	columns = append(columns, "source", "event_time", "ingest_time")
	kinds["source"] = batch.KindLowCardinalityString
	kinds["event_time"] = batch.KindTimestamp
	kinds["ingest_time"] = batch.KindTimestamp
	return &ColumnMap{Table: table, Columns: columns, Kinds: kinds}
}
