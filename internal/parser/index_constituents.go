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

type indexConstituentRow struct {
	IndexName string `csv:"INDEX_NAME"`
	Symbol    string `csv:"SYMBOL"`
	Action    string `csv:"ACTION"`
}

// IndexConstituents parses NSE's index addition/removal bulletin.
type IndexConstituents struct {
	Clock clock.Clock
}

func (p *IndexConstituents) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []indexConstituentRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema := &batch.Schema{
		Dataset: datasets.IndexConstituent,
		Columns: []batch.Column{
			{Name: "index_name", Kind: batch.KindLowCardinalityString},
			{Name: "symbol", Kind: batch.KindLowCardinalityString},
			{Name: "effective_date", Kind: batch.KindDate},
			{Name: "action", Kind: batch.KindLowCardinalityString},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)

	for _, r := range rows {
		indexName := cleanString(r.IndexName)
		symbol := cleanString(r.Symbol)
		action := cleanString(r.Action)

		row := batch.Row{
			"index_name":     indexName,
			"symbol":         symbol,
			"effective_date": logicalDate,
			"action":         action,
			"source":         desc.Exchange,
		}
		env := envelope.Stamp(p.Clock, desc.Exchange, "v1", indexName+"|"+symbol, logicalDate)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(datasets.IndexConstituent, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}
