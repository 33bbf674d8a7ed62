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

type dealRow struct {
	Symbol     string `csv:"SYMBOL"`
	ClientName string `csv:"CLIENT NAME"`
	DealType   string `csv:"BUY/SELL"`
	Quantity   string `csv:"QUANTITY TRADED"`
	Price      string `csv:"TRADE PRICE"`
}

// BulkDeals and BlockDeals share an identical bulletin shape; both parsers
// delegate to parseDeal, differing only in which dataset definition and
// partition key they stamp rows against.
type BulkDeals struct {
	Clock clock.Clock
}

func (p *BulkDeals) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	return parseDeal(p.Clock, path, desc, logicalDate, datasets.BulkDeal)
}

type BlockDeals struct {
	Clock clock.Clock
}

func (p *BlockDeals) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	return parseDeal(p.Clock, path, desc, logicalDate, datasets.BlockDeal)
}

func parseDeal(clk clock.Clock, path string, desc SourceDescriptor, logicalDate time.Time, dataset string) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []dealRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema := &batch.Schema{
		Dataset: dataset,
		Columns: []batch.Column{
			{Name: "symbol", Kind: batch.KindLowCardinalityString},
			{Name: "instrument_id", Kind: batch.KindString},
			{Name: "deal_date", Kind: batch.KindDate},
			{Name: "client_name", Kind: batch.KindString},
			{Name: "deal_type", Kind: batch.KindLowCardinalityString, Optional: dataset == datasets.BlockDeal},
			{Name: "quantity", Kind: batch.KindInt64},
			{Name: "price", Kind: batch.KindFloat64},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)

	for _, r := range rows {
		symbol := cleanString(r.Symbol)
		clientName := cleanString(r.ClientName)
		quantity, _, err := parseInt(r.Quantity)
		if err != nil {
			return nil, err
		}
		price, _, err := parseFloat(r.Price)
		if err != nil {
			return nil, err
		}

		row := batch.Row{
			"symbol":        symbol,
			"instrument_id": symbol,
			"deal_date":     logicalDate,
			"client_name":   clientName,
			"deal_type":     cleanString(r.DealType),
			"quantity":      quantity,
			"price":         price,
			"source":        desc.Exchange,
		}
		env := envelope.Stamp(clk, desc.Exchange, "v1", symbol+"|"+clientName+"|"+logicalDate.Format("2006-01-02"), logicalDate)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(dataset, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}
