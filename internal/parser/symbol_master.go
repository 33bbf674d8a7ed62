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

type symbolMasterRow struct {
	Symbol      string `csv:"SYMBOL"`
	ISIN        string `csv:"ISIN NUMBER"`
	CompanyName string `csv:"NAME OF COMPANY"`
	ListingDate string `csv:"DATE OF LISTING"`
}

// SymbolMaster parses NSE/BSE's listed-securities master into the
// symbol_master slowly-changing dimension. Each row opens a new valid_from
// interval for the symbol; the lake/warehouse layer, not this parser, is
// responsible for closing out a prior interval's valid_to.
type SymbolMaster struct {
	Clock clock.Clock
}

func (p *SymbolMaster) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []symbolMasterRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema := &batch.Schema{
		Dataset: datasets.SymbolMaster,
		Columns: []batch.Column{
			{Name: "symbol", Kind: batch.KindLowCardinalityString},
			{Name: "instrument_id", Kind: batch.KindString},
			{Name: "exchange", Kind: batch.KindLowCardinalityString},
			{Name: "isin", Kind: batch.KindString},
			{Name: "company_name", Kind: batch.KindString},
			{Name: "valid_from", Kind: batch.KindDate},
			{Name: "valid_to", Kind: batch.KindDate, Optional: true},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)

	for _, r := range rows {
		symbol := cleanString(r.Symbol)
		isin := cleanString(r.ISIN)
		validFrom := logicalDate
		if d, err := parseISTDate("02-01-2006", r.ListingDate); err == nil {
			validFrom = d
		}

		row := batch.Row{
			"symbol":        symbol,
			"instrument_id": symbol + ":" + isin,
			"exchange":      desc.Exchange,
			"isin":          isin,
			"company_name":  r.CompanyName,
			"valid_from":    validFrom,
			"source":        desc.Exchange,
		}
		env := envelope.Stamp(p.Clock, desc.Exchange, "v1", symbol+":"+isin, validFrom)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(datasets.SymbolMaster, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}
