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
package lake

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
)

// Dedupe collapses b's rows so no two share the same dedup key, keeping
// the row with the greatest ingest_time per key (spec §3/§8: no two rows
// in the normalized layer may share a dataset's full DedupKey). It
// preserves each surviving key's first-seen order so output is
// deterministic across runs on the same input. Call before Write.
func Dedupe(b *batch.Batch, key []string) {
	if b == nil || len(key) == 0 || len(b.Rows) == 0 {
		return
	}

	type slot struct {
		idx        int
		ingestTime time.Time
	}

	best := make(map[string]slot, len(b.Rows))
	order := make([]string, 0, len(b.Rows))
	for i, row := range b.Rows {
		k := dedupKey(row, key)
		ingestTime, _ := row.Time("ingest_time")
		if s, ok := best[k]; ok {
			if ingestTime.After(s.ingestTime) {
				best[k] = slot{idx: i, ingestTime: ingestTime}
			}
			continue
		}
		best[k] = slot{idx: i, ingestTime: ingestTime}
		order = append(order, k)
	}

	rows := make([]batch.Row, 0, len(order))
	hasEnvelopes := len(b.Envelopes) == len(b.Rows)
	var envelopes []envelope.Envelope
	if hasEnvelopes {
		envelopes = make([]envelope.Envelope, 0, len(order))
	}

	for _, k := range order {
		s := best[k]
		rows = append(rows, b.Rows[s.idx])
		if hasEnvelopes {
			envelopes = append(envelopes, b.Envelopes[s.idx])
		}
	}

	b.Rows = rows
	if hasEnvelopes {
		b.Envelopes = envelopes
	}
}

func dedupKey(row batch.Row, key []string) string {
	parts := make([]string, len(key))
	for i, col := range key {
		parts[i] = fmt.Sprintf("%v", row[col])
	}
	return strings.Join(parts, "|")
}
