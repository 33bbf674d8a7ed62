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

// specialflows builds the two dataset flows that don't fit the standard
// source registry in cmd/sources.go: macro_indicator, fetched per series
// rather than per exchange day, and quarterly_financial, fetched per
// (symbol, year, quarter) filing rather than per calendar day. Both need an
// extra identity dimension the five-stage buildFlow in cmd/flowbuilder.go
// has no slot for, so they get their own, near-identical builders instead
// of forcing a variadic parameter onto every other dataset.
package cmd

import (
	"context"
	"fmt"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/errors"
	"github.com/sandeep-jaiswar/champion/internal/fetcher"
	"github.com/sandeep-jaiswar/champion/internal/flow"
	"github.com/sandeep-jaiswar/champion/internal/lake"
	"github.com/sandeep-jaiswar/champion/internal/parser"
	"github.com/sandeep-jaiswar/champion/internal/state"
	"github.com/sandeep-jaiswar/champion/internal/task"
	"github.com/sandeep-jaiswar/champion/internal/validator"
	"github.com/sandeep-jaiswar/champion/internal/warehouse"
)

// macroSeries names one RBI/MOSPI time series champion tracks: repo rate,
// CPI inflation, INR/USD reference rate, and IIP growth are the four the
// monetary-policy and corporate-action-adjustment consumers ask for most.
type macroSeries struct {
	SeriesID    string
	Host        string
	URLTemplate string // %s is the series ID
}

var standardMacroSeries = []macroSeries{
	{SeriesID: "REPO_RATE", Host: "rbi.org.in", URLTemplate: "https://rbi.org.in/scripts/bs_viewcontent.aspx?series=%s"},
	{SeriesID: "CPI_INFLATION", Host: "mospi.gov.in", URLTemplate: "https://mospi.gov.in/cpi/series/%s"},
	{SeriesID: "USD_INR_REF", Host: "rbi.org.in", URLTemplate: "https://rbi.org.in/scripts/bs_viewcontent.aspx?series=%s"},
	{SeriesID: "IIP_GROWTH", Host: "mospi.gov.in", URLTemplate: "https://mospi.gov.in/iip/series/%s"},
}

// buildMacroFlow wires one macro_indicator flow for a single series. Unlike
// buildFlow's fetch stage, the request here ignores the logical date
// entirely: the upstream endpoint always returns the full observation
// history for the series and the parser emits every observation in it, so
// the flow fetches the same URL on every scheduled run.
func buildMacroFlow(ms macroSeries, p *pipeline) flow.Flow {
	var rawPath string
	var parsed = new(parsedHolder)

	fetchSpec := task.Spec{
		Name:     "fetch",
		Exchange: "IN",
		Dataset:  datasets.MacroIndicator,
		Timeout:  p.cfg.Task.Timeout,
		Retries:  task.RetryPolicy{Attempts: uint(p.cfg.HTTP.Retries)},
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			fsrc := fetcher.Source{
				Exchange: "IN",
				Host:     ms.Host,
				URL:      fmt.Sprintf(ms.URLTemplate, ms.SeriesID),
			}
			body, err := p.fetcher.Fetch(ctx, fsrc, rc.LogicalDate)
			if err != nil {
				return err
			}
			if body == nil {
				return errors.NotFound(fmt.Sprintf("no observations for series %s", ms.SeriesID))
			}
			path, err := writeRawFile(p.lakeBase, "IN", datasets.MacroIndicator, rc.LogicalDate, body)
			if err != nil {
				return err
			}
			rawPath = path
			return nil
		},
	}

	return buildCommonTail(fmt.Sprintf("macro-%s", ms.SeriesID), "IN", datasets.MacroIndicator, fetchSpec, &rawPath, parsed, p,
		func(clk clock.Clock) parser.Parser { return &parser.MacroIndicator{Clock: clk, SeriesID: ms.SeriesID} })
}

// financialFiling names one quarterly result filing champion expects:
// a symbol paired with the fiscal year and quarter it covers.
type financialFiling struct {
	Symbol  string
	Year    int
	Quarter int
	Host    string
	URL     string
}

// buildFinancialFlow wires one quarterly_financial flow for a single
// filing. Filings don't recur on a schedule the way daily bulletins do, so
// it is not registered in the cron scheduler; no command in cmd/ calls it.
func buildFinancialFlow(f financialFiling, p *pipeline) flow.Flow {
	var rawPath string
	var parsed = new(parsedHolder)

	fetchSpec := task.Spec{
		Name:     "fetch",
		Exchange: "IN",
		Dataset:  datasets.QuarterlyFinancial,
		Timeout:  p.cfg.Task.Timeout,
		Retries:  task.RetryPolicy{Attempts: uint(p.cfg.HTTP.Retries)},
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			fsrc := fetcher.Source{Exchange: "IN", Host: f.Host, URL: f.URL}
			body, err := p.fetcher.Fetch(ctx, fsrc, rc.LogicalDate)
			if err != nil {
				return err
			}
			if body == nil {
				return errors.NotFound(fmt.Sprintf("no filing for %s Q%d FY%d", f.Symbol, f.Quarter, f.Year))
			}
			path, err := writeRawFile(p.lakeBase, "IN", datasets.QuarterlyFinancial, rc.LogicalDate, body)
			if err != nil {
				return err
			}
			rawPath = path
			return nil
		},
	}

	name := fmt.Sprintf("financials-%s-%dQ%d", f.Symbol, f.Year, f.Quarter)
	return buildCommonTail(name, "IN", datasets.QuarterlyFinancial, fetchSpec, &rawPath, parsed, p,
		func(clk clock.Clock) parser.Parser {
			return &parser.QuarterlyFinancials{Clock: clk, Symbol: f.Symbol, Year: f.Year, Quarter: f.Quarter}
		})
}

// parsedHolder carries the parsed batch from the parse stage to validate,
// write, and load, the same closed-over-pointer shape buildFlow uses.
type parsedHolder struct {
	b *batch.Batch
}

// buildCommonTail assembles the parse/validate/write/load stages shared by
// both specialized flows, parameterized only by the fetch stage and the
// parser constructor, since everything downstream of "bytes on disk" is
// identical to the standard flow.
func buildCommonTail(name, exchange, dataset string, fetchSpec task.Spec, rawPath *string, parsed *parsedHolder, p *pipeline, newParser func(clk clock.Clock) parser.Parser) flow.Flow {
	def, _ := datasets.Get(dataset)

	parseSpec := task.Spec{
		Name:     "parse",
		Exchange: exchange,
		Dataset:  dataset,
		Timeout:  p.cfg.Task.Timeout,
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			b, err := newParser(rc.Clock).Parse(ctx, *rawPath, parser.SourceDescriptor{Exchange: exchange, Dataset: dataset}, rc.LogicalDate)
			if err != nil {
				return err
			}
			if b == nil {
				return errors.NotFound(fmt.Sprintf("%s parsed to zero rows", name))
			}
			parsed.b = b
			return nil
		},
	}

	validateSpec := task.Spec{
		Name:     "validate",
		Exchange: exchange,
		Dataset:  dataset,
		Timeout:  p.cfg.Task.Timeout,
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			_, err := validator.Validate(ctx, parsed.b, dataset,
				validator.WithQuarantine(p.quarantine),
				validator.WithBatchRows(p.cfg.Validation.BatchRows),
				validator.WithMaxSamples(p.cfg.Validation.MaxSamples),
				validator.WithFailOnErrors(true),
				validator.WithCalendar(p.calendars[exchange]),
			)
			return err
		},
	}

	writeSpec := task.Spec{
		Name:     "write",
		Exchange: exchange,
		Dataset:  dataset,
		Timeout:  p.cfg.Task.Timeout,
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			lake.Dedupe(parsed.b, def.DedupKey)
			_, err := lake.Write(ctx, p.lakeBase, parsed.b, "normalized", dataset, def.LakePartitions, lake.CompressionSnappy)
			return err
		},
	}

	loadSpec := task.Spec{
		Name:     "load",
		Exchange: exchange,
		Dataset:  dataset,
		Timeout:  p.cfg.Task.Timeout,
		Retries:  task.RetryPolicy{Attempts: uint(p.cfg.HTTP.Retries)},
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			if p.loader == nil {
				return nil
			}
			partitionKey := partitionWhere(dataset, rc.LogicalDate)
			sourcePathHash := state.SourcePathHash(*rawPath)
			if p.state != nil && !p.force {
				loaded, err := p.state.AlreadyLoaded(ctx, dataset, partitionKey, sourcePathHash)
				if err != nil {
					return err
				}
				if loaded {
					return errors.NotFound(fmt.Sprintf("%s/%s partition %s already loaded", exchange, dataset, partitionKey))
				}
			}

			ddl, err := warehouse.DDL(dataset)
			if err != nil {
				return err
			}
			if err := p.warehouse.EnsureTable(ctx, ddl, dataset); err != nil {
				return err
			}
			rowCount, err := p.loader.Load(ctx, parsed.b, dataset, partitionKey, warehouse.DefaultChunkRows)
			if err != nil {
				return err
			}
			if p.state != nil {
				if err := p.state.MarkLoaded(ctx, dataset, partitionKey, sourcePathHash, rowCount); err != nil {
					return err
				}
			}
			return nil
		},
	}

	return flow.Flow{
		Name:     name,
		Exchange: exchange,
		Tasks: []flow.Task{
			{Spec: fetchSpec},
			{Spec: parseSpec, DependsOn: []string{"fetch"}},
			{Spec: validateSpec, DependsOn: []string{"parse"}},
			{Spec: writeSpec, DependsOn: []string{"validate"}},
			{Spec: loadSpec, DependsOn: []string{"write"}},
		},
		Concurrency: p.cfg.Task.Parallelism,
	}
}
