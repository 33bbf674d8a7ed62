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

	"github.com/tidwall/gjson"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
)

// MacroIndicator parses an RBI/MOSPI-style JSON observations payload
// (`observations.#.date` / `observations.#.value`) into the macro_indicator
// dataset, using gjson's dotted path lookups rather than a struct-tagged
// unmarshal — the payload shape varies per series and a flexible path query
// is a better match than one struct per indicator.
type MacroIndicator struct {
	Clock    clock.Clock
	SeriesID string
}

func (p *MacroIndicator) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	observations := gjson.GetBytes(raw, "observations").Array()
	if len(observations) == 0 {
		return nil, nil
	}

	schema := &batch.Schema{
		Dataset: datasets.MacroIndicator,
		Columns: []batch.Column{
			{Name: "series_id", Kind: batch.KindLowCardinalityString},
			{Name: "observation_date", Kind: batch.KindDate},
			{Name: "value", Kind: batch.KindFloat64},
			{Name: "source", Kind: batch.KindLowCardinalityString},
		},
	}
	b := batch.New(schema)

	for _, obs := range observations {
		dateStr := obs.Get("date").String()
		valueStr := obs.Get("value").String()
		if dateStr == "" || valueStr == "." || valueStr == "" {
			continue // FRED/RBI both use "." for a missing observation
		}
		obsDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, err
		}
		value, ok, err := parseFloat(valueStr)
		if err != nil || !ok {
			continue
		}

		row := batch.Row{
			"series_id":        p.SeriesID,
			"observation_date": obsDate,
			"value":            value,
			"source":           desc.Exchange,
		}
		env := envelope.Stamp(p.Clock, desc.Exchange, "v1", p.SeriesID+"|"+dateStr, obsDate)
		row["event_time"] = env.EventTime
		row["ingest_time"] = env.IngestTime
		b.Append(row, env)
	}

	if b.Len() == 0 {
		return nil, nil
	}
	if err := checkRequiredColumns(datasets.MacroIndicator, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}
