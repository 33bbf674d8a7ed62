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

// shareholdingRow mirrors the quarterly shareholding pattern bulletin's
// category breakdown (promoter, FII, DII, public, ...).
type shareholdingRow struct {
	Symbol      string `csv:"SYMBOL"`
	Category    string `csv:"CATEGORY"`
	PercentHeld string `csv:"PERCENTAGE"`
}

// Shareholding parses the quarterly shareholding pattern bulletin into the
// shareholding canonical batch.
type Shareholding struct {
	Clock clock.Clock
}

func (p *Shareholding) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []shareholdingRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema := &batch.Schema{
		Dataset: datasets.Shareholding,
		Columns: []batch.Column{
			{Name: "symbol", Kind: batch.KindLowCardinalityString},
			{Name: "instrument_id", Kind: batch.KindString},
			{Name: "as_of_date", Kind: batch.KindDate},
			{Name: "category", Kind: batch.KindLowCardinalityString},
			{Name: "percent_held", Kind: batch.KindFloat64},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)

	for _, r := range rows {
		symbol := cleanString(r.Symbol)
		category := cleanString(r.Category)
		percent, _, err := parseFloat(r.PercentHeld)
		if err != nil {
			return nil, err
		}

		row := batch.Row{
			"symbol":        symbol,
			"instrument_id": symbol,
			"as_of_date":    logicalDate,
			"category":      category,
			"percent_held":  percent,
			"source":        desc.Exchange,
		}
		env := envelope.Stamp(p.Clock, desc.Exchange, "v1", symbol+"|"+category+"|"+logicalDate.Format("2006-01-02"), logicalDate)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(datasets.Shareholding, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}
