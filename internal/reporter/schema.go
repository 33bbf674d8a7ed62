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
package reporter

import (
	"sort"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/validator"
)

// summarizeBySchema aggregates every audit entry stamped on date into
// per-schema totals, sorted by schema name for stable report output.
func summarizeBySchema(entries []validator.AuditEntry, date time.Time) []SchemaCounts {
	totals := make(map[string]*SchemaCounts)
	var order []string
	for _, e := range entries {
		if !sameDay(e.Timestamp, date) {
			continue
		}
		sc, ok := totals[e.Schema]
		if !ok {
			sc = &SchemaCounts{Schema: e.Schema}
			totals[e.Schema] = sc
			order = append(order, e.Schema)
		}
		sc.Total += e.Total
		sc.Failed += e.Critical + e.Warnings
	}

	sort.Strings(order)
	out := make([]SchemaCounts, 0, len(order))
	for _, schema := range order {
		sc := totals[schema]
		if sc.Total > 0 {
			sc.FailureRate = float64(sc.Failed) / float64(sc.Total)
		}
		out = append(out, *sc)
	}
	return out
}
