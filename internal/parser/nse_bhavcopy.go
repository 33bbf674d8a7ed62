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
package parser

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
)

// nseBhavcopyRow mirrors NSE's daily CM bhavcopy CSV header exactly; no
// column is left to type inference.
type nseBhavcopyRow struct {
	Symbol      string `csv:"SYMBOL"`
	Series      string `csv:"SERIES"`
	Open        string `csv:"OPEN"`
	High        string `csv:"HIGH"`
	Low         string `csv:"LOW"`
	Close       string `csv:"CLOSE"`
	LastPrice   string `csv:"LAST"`
	PrevClose   string `csv:"PREVCLOSE"`
	TotalTrdQty string `csv:"TOTTRDQTY"`
	TotalTrdVal string `csv:"TOTTRDVAL"`
	TradeDate   string `csv:"TIMESTAMP"`
	ISIN        string `csv:"ISIN"`
}

// NSEBhavcopy parses NSE's end-of-day equity bhavcopy CSV into the
// equity_ohlc canonical batch.
type NSEBhavcopy struct {
	Clock clock.Clock
}

func (p *NSEBhavcopy) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []nseBhavcopyRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema, _ := equityOHLCSchema()
	b := batch.New(schema)

	for _, r := range rows {
		if r.Series != "EQ" {
			continue // only the primary equity series contributes to OHLC
		}
		tradeDate, err := parseISTDate("02-Jan-2006", r.TradeDate)
		if err != nil {
			return nil, err
		}
		open, _, err := parseFloat(r.Open)
		if err != nil {
			return nil, err
		}
		high, _, err := parseFloat(r.High)
		if err != nil {
			return nil, err
		}
		low, _, err := parseFloat(r.Low)
		if err != nil {
			return nil, err
		}
		cls, _, err := parseFloat(r.Close)
		if err != nil {
			return nil, err
		}
		volume, _, err := parseInt(r.TotalTrdQty)
		if err != nil {
			return nil, err
		}

		symbol := cleanString(r.Symbol)
		row := batch.Row{
			"symbol":        symbol,
			"instrument_id": symbol + ":" + cleanString(r.ISIN),
			"trade_date":    tradeDate,
			"open":          open,
			"high":          high,
			"low":           low,
			"close":         cls,
			"volume":        volume,
			"source":        "NSE",
		}
		env := envelope.Stamp(p.Clock, "NSE", "v1", row["instrument_id"].(string), tradeDate)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(datasets.EquityOHLC, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}

// equityOHLCSchema returns the canonical batch.Schema for equity_ohlc,
// derived from the dataset definition's required columns.
func equityOHLCSchema() (*batch.Schema, error) {
	return &batch.Schema{
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
	}, nil
}

// presentColumns collects the union of keys actually populated across a
// batch's rows, used for the post-parse required-column check.
func presentColumns(b *batch.Batch) map[string]bool {
	present := map[string]bool{}
	for _, row := range b.Rows {
		for k := range row {
			present[k] = true
		}
	}
	return present
}
