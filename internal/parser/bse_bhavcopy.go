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
	"encoding/csv"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
)

type bseBhavcopyRow struct {
	Symbol string `csv:"symbol"`
	Open   string `csv:"open"`
	High   string `csv:"high"`
	Low    string `csv:"low"`
	Close  string `csv:"close"`
	Volume string `csv:"volume"`
}

// BSEBhavcopy parses BSE's end-of-day equity bhavcopy CSV. BSE's header
// vocabulary differs from NSE's; renameHeaders rewrites it to the shared
// canonical set before gocsv unmarshals the body, so downstream code is
// exchange-agnostic.
type BSEBhavcopy struct {
	Clock clock.Clock
}

func (p *BSEBhavcopy) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	header = renameHeaders(header, bseToNSEHeaders)

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(header)
	for {
		rec, err := reader.Read()
		if err != nil {
			break
		}
		_ = w.Write(rec)
	}
	w.Flush()

	var rows []bseBhavcopyRow
	if err := gocsv.UnmarshalBytes([]byte(sb.String()), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema, _ := equityOHLCSchema()
	b := batch.New(schema)

	for _, r := range rows {
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
		volume, _, err := parseInt(r.Volume)
		if err != nil {
			return nil, err
		}

		symbol := cleanString(r.Symbol)
		row := batch.Row{
			"symbol":        symbol,
			"instrument_id": "BSE:" + symbol,
			"trade_date":    logicalDate,
			"open":          open,
			"high":          high,
			"low":           low,
			"close":         cls,
			"volume":        volume,
			"source":        "BSE",
		}
		env := envelope.Stamp(p.Clock, "BSE", "v1", row["instrument_id"].(string), logicalDate)
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
