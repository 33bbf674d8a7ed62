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

type tradingCalendarRow struct {
	Date        string `csv:"DATE"`
	Description string `csv:"DESCRIPTION"`
}

// TradingCalendar parses NSE/BSE's published holiday list into the
// trading_calendar dataset: every listed date is a holiday, every other date
// in the calendar year defaults to a trading day (the fetcher consults this
// cache directly rather than re-deriving it, per spec §4.1's not-a-trading-day
// NotFound behaviour).
type TradingCalendar struct {
	Clock clock.Clock
}

func (p *TradingCalendar) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []tradingCalendarRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema := &batch.Schema{
		Dataset: datasets.TradingCalendar,
		Columns: []batch.Column{
			{Name: "exchange", Kind: batch.KindLowCardinalityString},
			{Name: "date", Kind: batch.KindDate},
			{Name: "day_type", Kind: batch.KindLowCardinalityString},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)

	for _, r := range rows {
		date, err := parseISTDate("02-Jan-2006", r.Date)
		if err != nil {
			return nil, err
		}
		row := batch.Row{
			"exchange": desc.Exchange,
			"date":     date,
			"day_type": "holiday",
			"source":   desc.Exchange,
		}
		env := envelope.Stamp(p.Clock, desc.Exchange, "v1", desc.Exchange+"|"+date.Format("2006-01-02"), date)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(datasets.TradingCalendar, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}
