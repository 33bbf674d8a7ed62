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
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
	"github.com/sandeep-jaiswar/champion/internal/errors"
)

func ohlcBatch(clk clock.Clock, tradeDate time.Time, symbols []string) *batch.Batch {
	schema := &batch.Schema{
		Dataset: datasets.EquityOHLC,
		Columns: []batch.Column{
			{Name: "symbol", Kind: batch.KindLowCardinalityString},
			{Name: "instrument_id", Kind: batch.KindString},
			{Name: "trade_date", Kind: batch.KindDate},
			{Name: "open", Kind: batch.KindFloat64},
			{Name: "high", Kind: batch.KindFloat64},
			{Name: "low", Kind: batch.KindFloat64},
			{Name: "close", Kind: batch.KindFloat64},
			{Name: "volume", Kind: batch.KindInt64},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)
	for _, sym := range symbols {
		instrumentID := sym + ":" + sym + "ISIN"
		env := envelope.Stamp(clk, "NSE", "v1", instrumentID, tradeDate)
		b.Append(batch.Row{
			"symbol":        sym,
			"instrument_id": instrumentID,
			"trade_date":    tradeDate,
			"open":          100.0,
			"high":          110.0,
			"low":           95.0,
			"close":         105.0,
			"volume":        int64(1000),
			"source":        "NSE",
			"event_time":    env.EventTime,
			"ingest_time":   env.IngestTime,
		}, env)
	}
	return b
}

var _ = Describe("replaying a load", func() {
	It("collapses to the same row count regardless of how many times it is loaded", func() {
		tradeDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		symbols := []string{"TCS", "INFY", "RELIANCE"}

		def, ok := datasets.Get(datasets.EquityOHLC)
		Expect(ok).To(BeTrue())

		conn := newFakeConn(def.SortKey)
		client := &Client{conn: conn}
		loader := NewLoader(client)

		ctx := context.Background()
		partitionWhere := "toYYYYMM(trade_date) = 202601"

		firstClock := clock.Fixed{At: time.Date(2026, 1, 6, 1, 0, 0, 0, time.UTC)}
		first := ohlcBatch(firstClock, tradeDate, symbols)
		inserted, err := loader.Load(ctx, first, "equity_ohlc", partitionWhere, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(inserted).To(Equal(int64(3)))
		Expect(conn.byKey).To(HaveLen(3))

		// Replay the identical source file: same symbols, same trade date,
		// a later ingest_time (as a re-run hours later would produce). The
		// ReplacingMergeTree sort key (symbol, trade_date, instrument_id)
		// must collapse this to the same three logical rows, not six.
		secondClock := clock.Fixed{At: time.Date(2026, 1, 6, 3, 0, 0, 0, time.UTC)}
		second := ohlcBatch(secondClock, tradeDate, symbols)
		inserted, err = loader.Load(ctx, second, "equity_ohlc", partitionWhere, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(inserted).To(Equal(int64(3)))
		Expect(conn.byKey).To(HaveLen(3))

		for _, row := range conn.byKey {
			Expect(row.ingestTime).To(Equal(secondClock.At), "every key should retain the later replay's ingest_time")
		}
	})

	It("raises LoadMismatchError when the post-load partition count falls short", func() {
		tradeDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		b := ohlcBatch(clock.Fixed{At: time.Now()}, tradeDate, []string{"TCS", "INFY"})

		client := &Client{conn: &undercountingConn{fakeConn: newFakeConn([]string{"symbol", "trade_date", "instrument_id"})}}
		loader := NewLoader(client)

		_, err := loader.Load(context.Background(), b, "equity_ohlc", "1=1", 0)
		Expect(err).To(HaveOccurred())
		Expect(errors.KindOf(err)).To(Equal(errors.KindWarehouse))
		Expect(errors.Retryable(err)).To(BeFalse())
	})
})

// undercountingConn wraps fakeConn but always reports one fewer row than
// were actually sent, simulating a warehouse-side drop that Loader must
// catch via its post-load verification count.
type undercountingConn struct {
	*fakeConn
}

func (c *undercountingConn) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	n := int64(len(c.byKey)) - 1
	if n < 0 {
		n = 0
	}
	return &fakeCountRow{n: n}
}
