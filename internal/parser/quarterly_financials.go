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
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
)

// QuarterlyFinancials parses a BSE/NSE XBRL-tagged HTML filing into the
// quarterly_financial dataset. Each <ix:nonFraction name="...">value</...>
// element is walked into an element-name→value map; only names present in
// quarterlyFinancialFields are kept, everything else is dropped.
type QuarterlyFinancials struct {
	Clock   clock.Clock
	Symbol  string
	Year    int
	Quarter int
}

func (p *QuarterlyFinancials) Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tags, err := extractXBRLTags(f)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}

	schema := quarterlyFinancialSchema()
	b := batch.New(schema)

	row := batch.Row{
		"symbol":        p.Symbol,
		"instrument_id": p.Symbol,
		"year":          int64(p.Year),
		"quarter":       int64(p.Quarter),
		"report_period": logicalDate,
		"calendar_date": logicalDate,
		"source":        desc.Exchange,
	}

	known := map[string]bool{}
	for _, name := range quarterlyFinancialFields {
		known[name] = true
	}
	for name, value := range tags {
		if !known[name] {
			continue // tag present in filing, absent from the fixed field map
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			continue
		}
		row[name] = v
	}

	env := envelope.Stamp(p.Clock, desc.Exchange, "v1", p.Symbol+"|"+strconv.Itoa(p.Year)+"Q"+strconv.Itoa(p.Quarter), logicalDate)
	row["event_time"] = env.EventTime
	row["ingest_time"] = env.IngestTime
	b.Append(row, env)

	if err := checkRequiredColumns(datasets.QuarterlyFinancial, presentColumns(b)); err != nil {
		return nil, err
	}
	return b, nil
}

// extractXBRLTags walks an Inline XBRL HTML document collecting every
// ix:nonFraction element's name attribute and text content.
func extractXBRLTags(r *os.File) (map[string]string, error) {
	tags := map[string]string{}
	tokenizer := html.NewTokenizer(r)
	var currentName string
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return tags, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			if string(name) != "nonfraction" && string(name) != "ix:nonfraction" {
				continue
			}
			currentName = ""
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tokenizer.TagAttr()
				if string(key) == "name" {
					currentName = normalizeXBRLName(string(val))
				}
			}
		case html.TextToken:
			if currentName != "" {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					tags[currentName] = text
					currentName = ""
				}
			}
		}
	}
}

// normalizeXBRLName strips the XBRL taxonomy prefix (e.g. "in-capmkt:CostOfRevenue")
// and converts PascalCase to champion's snake_case field vocabulary.
func normalizeXBRLName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	var sb strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}

func quarterlyFinancialSchema() *batch.Schema {
	cols := []batch.Column{
		{Name: "symbol", Kind: batch.KindLowCardinalityString},
		{Name: "instrument_id", Kind: batch.KindString},
		{Name: "year", Kind: batch.KindInt64},
		{Name: "quarter", Kind: batch.KindInt64},
		{Name: "report_period", Kind: batch.KindDate},
		{Name: "calendar_date", Kind: batch.KindDate},
	}
	for _, f := range quarterlyFinancialFields {
		cols = append(cols, batch.Column{Name: f, Kind: batch.KindFloat64, Optional: true})
	}
	cols = append(cols, batch.Column{Name: "source", Kind: batch.KindLowCardinalityString})
	return &batch.Schema{Dataset: datasets.QuarterlyFinancial, Columns: cols}
}
