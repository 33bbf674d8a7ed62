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
package parser_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

// end-to-end: a 1:5 stock split on ex-date D. Pre-split closes sit around
// 2500, post-split closes around 500 — a >20% day-over-day move that would
// normally trip price_continuity_post_ca, except the ratio matches a clean
// 1:5 split and the rule is expected to let it through (spec.md §8,
// scenario 6).
var _ = Describe("end-to-end: stock split continuity", func() {
	It("does not flag a day-over-day move matching the split ratio", func() {
		clk := clock.NewStepped(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), time.Second)
		schema := &batch.Schema{
			Dataset: datasets.EquityOHLC,
			Columns: []batch.Column{
				{Name: "symbol", Kind: batch.KindLowCardinalityString},
				{Name: "trade_date", Kind: batch.KindDate},
				{Name: "close", Kind: batch.KindFloat64},
			},
		}
		b := batch.New(schema)

		preSplit := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		exDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

		rows := []batch.Row{
			{"symbol": "TCS", "trade_date": preSplit, "close": 2500.0},
			{"symbol": "TCS", "trade_date": exDate, "close": 500.0}, // 1:5 split, ratio exactly 0.2
		}
		for _, row := range rows {
			tradeDate, _ := row.Time("trade_date")
			env := envelope.Stamp(clk, "NSE", "v1", "TCS", tradeDate)
			row["event_time"] = env.EventTime
			row["ingest_time"] = env.IngestTime
			b.Append(row, env)
		}

		result, err := validator.Validate(context.Background(), b, datasets.EquityOHLC)
		Expect(err).NotTo(HaveOccurred())

		for _, sample := range result.Samples {
			Expect(sample.Rule).NotTo(Equal("price_continuity_post_ca"))
		}
	})

	It("flags a day-over-day move that matches no split ratio", func() {
		clk := clock.NewStepped(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), time.Second)
		schema := &batch.Schema{
			Dataset: datasets.EquityOHLC,
			Columns: []batch.Column{
				{Name: "symbol", Kind: batch.KindLowCardinalityString},
				{Name: "trade_date", Kind: batch.KindDate},
				{Name: "close", Kind: batch.KindFloat64},
			},
		}
		b := batch.New(schema)

		day1 := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		day2 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

		rows := []batch.Row{
			{"symbol": "INFY", "trade_date": day1, "close": 1500.0},
			{"symbol": "INFY", "trade_date": day2, "close": 900.0}, // 40% drop, no clean split ratio
		}
		for _, row := range rows {
			tradeDate, _ := row.Time("trade_date")
			env := envelope.Stamp(clk, "NSE", "v1", "INFY", tradeDate)
			row["event_time"] = env.EventTime
			row["ingest_time"] = env.IngestTime
			b.Append(row, env)
		}

		result, err := validator.Validate(context.Background(), b, datasets.EquityOHLC)
		Expect(err).NotTo(HaveOccurred())

		var found bool
		for _, sample := range result.Samples {
			if sample.Rule == "price_continuity_post_ca" {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})
})
