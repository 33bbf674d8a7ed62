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
package lake_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/lake"
)

var _ = Describe("dedup-key uniqueness per partition", func() {
	It("keeps exactly one row per dedup key, the most recently ingested", func() {
		def, ok := datasets.Get(datasets.EquityOHLC)
		Expect(ok).To(BeTrue())

		older := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
		newer := older.Add(time.Hour)

		schema := &batch.Schema{Dataset: datasets.EquityOHLC}
		b := batch.New(schema)
		b.Rows = []batch.Row{
			{"symbol": "TCS", "instrument_id": "TCS:X", "trade_date": older, "close": 100.0, "ingest_time": older},
			{"symbol": "TCS", "instrument_id": "TCS:X", "trade_date": older, "close": 101.0, "ingest_time": newer},
			{"symbol": "INFY", "instrument_id": "INFY:Y", "trade_date": older, "close": 50.0, "ingest_time": older},
		}

		lake.Dedupe(b, def.DedupKey)
		Expect(b.Rows).To(HaveLen(2))

		var tcsRow batch.Row
		for _, r := range b.Rows {
			if s, _ := r.String("symbol"); s == "TCS" {
				tcsRow = r
			}
		}
		close, _ := tcsRow.Float64("close")
		Expect(close).To(Equal(101.0))
	})

	It("keeps the first-seen row's position for a surviving key", func() {
		def, ok := datasets.Get(datasets.EquityOHLC)
		Expect(ok).To(BeTrue())

		t := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
		schema := &batch.Schema{Dataset: datasets.EquityOHLC}
		b := batch.New(schema)
		b.Rows = []batch.Row{
			{"symbol": "INFY", "instrument_id": "INFY:Y", "trade_date": t, "close": 50.0, "ingest_time": t},
			{"symbol": "TCS", "instrument_id": "TCS:X", "trade_date": t, "close": 100.0, "ingest_time": t},
		}

		lake.Dedupe(b, def.DedupKey)
		Expect(b.Rows).To(HaveLen(2))
		symbol, _ := b.Rows[0].String("symbol")
		Expect(symbol).To(Equal("INFY"))
	})
})
