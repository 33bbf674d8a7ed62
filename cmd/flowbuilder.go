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

// cmd's flow builder generalizes teacher's cmd/run.go, which wired one
// fixed fetch->save pipeline per run. Every standard source here gets the
// same five-stage fetch/parse/validate/write/load chain instead of a
// hand-written closure per dataset, so adding a new exchange bulletin is a
// registry entry (cmd/sources.go), not a new file.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/calendar"
	"github.com/sandeep-jaiswar/champion/internal/circuitbreaker"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/config"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/enrich"
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

// pipeline bundles the infrastructure every standard flow's tasks share:
// one HTTP client, one quarantine directory, one lake root, one warehouse
// connection. Built once per process (or per backfill run) and closed over
// by every buildFlow call.
type pipeline struct {
	fetcher    *fetcher.Fetcher
	quarantine *validator.Quarantine
	lakeBase   string
	warehouse  *warehouse.Client
	loader     warehouse.Loader
	cfg        *config.Config
	enricher   *enrich.Enricher
	state      *state.Store
	force      bool // bypass internal/state.AlreadyLoaded, re-running an already-loaded partition
	calendars  map[string]*calendar.Calendar
}

// newPipeline wires a pipeline from cfg, grounded on teacher's per-provider
// resty.New() client construction, generalized to one shared client with
// per-host rate limiting and circuit breaking rather than one client per
// subscription.
func newPipeline(clk clock.Clock, cfg *config.Config, cals map[string]*calendar.Calendar, wh *warehouse.Client, st *state.Store, force bool) *pipeline {
	client := resty.New().
		SetTimeout(cfg.HTTP.TimeoutRead).
		SetRetryCount(0) // internal/fetcher owns the retry loop, not resty

	f := fetcher.New(client, circuitbreaker.NewRegistry(cfg.CB.Threshold, cfg.CB.Cooldown))
	f.Calendars = cals

	var loader warehouse.Loader
	if wh != nil {
		loader = warehouse.NewLoader(wh)
	}

	enricher := enrich.New(resty.New().SetTimeout(cfg.HTTP.TimeoutRead), cfg.Enrich.InstrumentMasterURL, cfg.Enrich.APIKey, enrich.NewCache(), log.Logger)

	return &pipeline{
		fetcher:    f,
		quarantine: &validator.Quarantine{Dir: cfg.Quarantine.Dir, Clock: clk},
		lakeBase:   cfg.Lake.Base,
		warehouse:  wh,
		loader:     loader,
		cfg:        cfg,
		enricher:   enricher,
		state:      st,
		force:      force,
		calendars:  cals,
	}
}

// datasetDateColumn names each dataset's identity date column, mirroring
// internal/lake's own dateColumns lookup, used here to build the warehouse
// load's partition WHERE clause.
var datasetDateColumn = map[string]string{
	datasets.EquityOHLC:         "trade_date",
	datasets.CorporateAction:    "ex_date",
	datasets.IndexConstituent:   "effective_date",
	datasets.TradingCalendar:    "date",
	datasets.SymbolMaster:       "valid_from",
	datasets.BulkDeal:           "deal_date",
	datasets.BlockDeal:          "deal_date",
	datasets.QuarterlyFinancial: "report_period",
	datasets.Shareholding:       "as_of_date",
	datasets.MacroIndicator:     "observation_date",
}

func partitionWhere(dataset string, logicalDate time.Time) string {
	col, ok := datasetDateColumn[dataset]
	if !ok {
		col = "event_time"
	}
	return fmt.Sprintf("%s = '%s'", col, logicalDate.Format("2006-01-02"))
}

// writeRawFile persists a fetched bulletin under the lake's raw layer so a
// re-parse after a parser bugfix never needs to re-fetch, mirroring the
// write-once-reuse-forever treatment normalized Parquet files get in
// internal/lake.
func writeRawFile(base, exchange, dataset string, logicalDate time.Time, body []byte) (string, error) {
	dir := filepath.Join(base, "raw", dataset, exchange, logicalDate.Format("2006/01/02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "bulletin")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// buildFlow assembles the standard fetch->parse->validate->write->load
// chain for one source. Intermediate state (the raw file path, the parsed
// batch) is threaded between stages via closed-over variables rather than
// a shared context value, since the orchestrator runs a flow's tasks
// strictly in dependency order and a dataset's own chain is never run
// concurrently with itself.
func buildFlow(src source, p *pipeline) (flow.Flow, error) {
	def, ok := datasets.Get(src.Dataset)
	if !ok {
		return flow.Flow{}, errors.New(errors.KindConfig, "unknown dataset "+src.Dataset, nil, nil)
	}

	var (
		rawPath string
		parsed  *batch.Batch
	)

	fetchSpec := task.Spec{
		Name:     "fetch",
		Exchange: src.Exchange,
		Dataset:  src.Dataset,
		Timeout:  p.cfg.Task.Timeout,
		Retries:  task.RetryPolicy{Attempts: uint(p.cfg.HTTP.Retries)},
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			fsrc := fetcher.Source{
				Exchange:    src.Exchange,
				Host:        src.Host,
				URL:         src.url(rc.LogicalDate),
				Zipped:      src.Zipped,
				FilePattern: src.FilePattern,
			}
			body, err := p.fetcher.Fetch(ctx, fsrc, rc.LogicalDate)
			if err != nil {
				return err
			}
			if body == nil {
				return errors.NotFound(fmt.Sprintf("no %s bulletin for %s on %s", src.Dataset, src.Exchange, rc.LogicalDate.Format("2006-01-02")))
			}
			path, err := writeRawFile(p.lakeBase, src.Exchange, src.Dataset, rc.LogicalDate, body)
			if err != nil {
				return err
			}
			rawPath = path
			return nil
		},
	}

	parseSpec := task.Spec{
		Name:     "parse",
		Exchange: src.Exchange,
		Dataset:  src.Dataset,
		Timeout:  p.cfg.Task.Timeout,
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			b, err := src.NewParser(rc.Clock).Parse(ctx, rawPath, parser.SourceDescriptor{Exchange: src.Exchange, Dataset: src.Dataset}, rc.LogicalDate)
			if err != nil {
				return err
			}
			if b == nil {
				return errors.NotFound(fmt.Sprintf("%s bulletin for %s on %s parsed to zero rows", src.Dataset, src.Exchange, rc.LogicalDate.Format("2006-01-02")))
			}
			parsed = b
			return nil
		},
	}

	validateSpec := task.Spec{
		Name:     "validate",
		Exchange: src.Exchange,
		Dataset:  src.Dataset,
		Timeout:  p.cfg.Task.Timeout,
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			_, err := validator.Validate(ctx, parsed, src.Dataset,
				validator.WithQuarantine(p.quarantine),
				validator.WithBatchRows(p.cfg.Validation.BatchRows),
				validator.WithMaxSamples(p.cfg.Validation.MaxSamples),
				validator.WithFailOnErrors(true),
				validator.WithCalendar(p.calendars[src.Exchange]),
			)
			return err
		},
	}

	tail := "validate"
	tasks := []flow.Task{
		{Spec: fetchSpec},
		{Spec: parseSpec, DependsOn: []string{"fetch"}},
		{Spec: validateSpec, DependsOn: []string{"parse"}},
	}

	if src.Dataset == datasets.SymbolMaster && p.cfg.Enrich.InstrumentMasterURL != "" {
		enrichSpec := task.Spec{
			Name:     "enrich",
			Exchange: src.Exchange,
			Dataset:  src.Dataset,
			Timeout:  p.cfg.Task.Timeout,
			Retries:  task.RetryPolicy{Attempts: uint(p.cfg.HTTP.Retries)},
			Fn: func(ctx context.Context, rc *task.RunContext) error {
				return p.enricher.Enrich(ctx, parsed.Rows)
			},
		}
		tasks = append(tasks, flow.Task{Spec: enrichSpec, DependsOn: []string{tail}})
		tail = "enrich"
	}

	writeSpec := task.Spec{
		Name:     "write",
		Exchange: src.Exchange,
		Dataset:  src.Dataset,
		Timeout:  p.cfg.Task.Timeout,
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			lake.Dedupe(parsed, def.DedupKey)
			_, err := lake.Write(ctx, p.lakeBase, parsed, "normalized", src.Dataset, def.LakePartitions, lake.CompressionSnappy)
			return err
		},
	}
	tasks = append(tasks, flow.Task{Spec: writeSpec, DependsOn: []string{tail}})
	tail = "write"

	loadSpec := task.Spec{
		Name:     "load",
		Exchange: src.Exchange,
		Dataset:  src.Dataset,
		Timeout:  p.cfg.Task.Timeout,
		Retries:  task.RetryPolicy{Attempts: uint(p.cfg.HTTP.Retries)},
		Fn: func(ctx context.Context, rc *task.RunContext) error {
			if p.loader == nil {
				return nil // warehouse not configured (e.g. lake-only dev run)
			}
			partitionKey := partitionWhere(src.Dataset, rc.LogicalDate)
			sourcePathHash := state.SourcePathHash(rawPath)
			if p.state != nil && !p.force {
				loaded, err := p.state.AlreadyLoaded(ctx, src.Dataset, partitionKey, sourcePathHash)
				if err != nil {
					return err
				}
				if loaded {
					return errors.NotFound(fmt.Sprintf("%s/%s partition %s already loaded", src.Exchange, src.Dataset, partitionKey))
				}
			}

			ddl, err := warehouse.DDL(src.Dataset)
			if err != nil {
				return err
			}
			if err := p.warehouse.EnsureTable(ctx, ddl, src.Dataset); err != nil {
				return err
			}
			rowCount, err := p.loader.Load(ctx, parsed, src.Dataset, partitionKey, warehouse.DefaultChunkRows)
			if err != nil {
				return err
			}
			if p.state != nil {
				if err := p.state.MarkLoaded(ctx, src.Dataset, partitionKey, sourcePathHash, rowCount); err != nil {
					return err
				}
			}
			return nil
		},
	}
	tasks = append(tasks, flow.Task{Spec: loadSpec, DependsOn: []string{tail}})

	return flow.Flow{
		Name:        fmt.Sprintf("%s-%s", strings.ToLower(src.Exchange), src.Dataset),
		Exchange:    src.Exchange,
		Tasks:       tasks,
		Concurrency: p.cfg.Task.Parallelism,
	}, nil
}
