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

// Package validator runs structural and business rules over a canonical
// batch in bounded-memory chunks, quarantining failing rows with an audit
// trail rather than aborting the whole run on the first bad record.
package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/calendar"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

type RuleViolation struct {
	Rule     string    `json:"rule"`
	Severity Severity  `json:"severity"`
	RowIndex int       `json:"row_index"`
	Detail   string    `json:"detail"`
	At       time.Time `json:"at"`
}

type RuleContext struct {
	Schema   *batch.Schema
	Now      time.Time
	Calendar *calendar.Calendar // optional: enables trading_day_completeness
}

type Rule interface {
	Name() string
	Severity() Severity
	Check(row batch.Row, ctx RuleContext) []RuleViolation
}

// BatchRule is a rule whose invariant only makes sense across the whole
// batch — duplicate keys, calendar coverage, cross-row continuity — rather
// than one row in isolation. It runs once per Validate call, not once per
// row, and reports violations against whichever row indexes it finds at
// fault.
type BatchRule interface {
	Name() string
	Severity() Severity
	CheckBatch(b *batch.Batch, ctx RuleContext) []RuleViolation
}

type ValidationResult struct {
	Total, Passed, Critical, Warnings int
	RulesApplied                      []string
	Samples                           []RuleViolation
	ErrorFilePath                     string
	Timestamp                         time.Time
}

type Option func(*options)

type options struct {
	batchRows   int
	maxSamples  int
	failOnError bool
	quarantine  *Quarantine
	custom      map[string]func(batch.Row) []RuleViolation
	calendar    *calendar.Calendar
}

func WithBatchRows(n int) Option { return func(o *options) { o.batchRows = n } }
func WithMaxSamples(n int) Option { return func(o *options) { o.maxSamples = n } }
func WithFailOnErrors(fail bool) Option { return func(o *options) { o.failOnError = fail } }
func WithQuarantine(q *Quarantine) Option { return func(o *options) { o.quarantine = q } }

// WithCalendar supplies the exchange calendar trading_day_completeness
// checks the batch's date coverage against. Without it, that rule no-ops
// (treated the same as any other optional-dependency skip, per spec §4.3).
func WithCalendar(cal *calendar.Calendar) Option { return func(o *options) { o.calendar = cal } }

// RegisterCustom adds a one-off rule function scoped to a single Validate
// call, for ad hoc checks that don't warrant a named Rule type.
func RegisterCustom(name string, fn func(batch.Row) []RuleViolation) Option {
	return func(o *options) {
		if o.custom == nil {
			o.custom = map[string]func(batch.Row) []RuleViolation{}
		}
		o.custom[name] = fn
	}
}

// Validate runs every registered built-in rule plus the dataset's structural
// schema rules over b, streaming in chunks of opts.batchRows rows.
func Validate(ctx context.Context, b *batch.Batch, schemaName string, opts ...Option) (ValidationResult, error) {
	cfg := &options{batchRows: DefaultBatchRows, maxSamples: DefaultMaxSamples}
	for _, opt := range opts {
		opt(cfg)
	}

	rules := RulesFor(schemaName)
	structural, err := LoadStructuralRules(schemaName)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("schema", schemaName).Msg("no structural schema file, skipping")
	} else {
		rules = append(rules, structural...)
	}

	result := ValidationResult{Timestamp: cfg.nowOrDefault()}
	for _, r := range rules {
		result.RulesApplied = append(result.RulesApplied, r.Name())
	}
	for name := range cfg.custom {
		result.RulesApplied = append(result.RulesApplied, name)
	}

	ruleCtx := RuleContext{Schema: b.Schema, Now: result.Timestamp, Calendar: cfg.calendar}

	batchRules := BatchRulesFor(schemaName)
	batchViolationsByRow := make(map[int][]RuleViolation)
	var unrooted []RuleViolation // batch violations with no single offending row (e.g. a missing trading day)
	for _, br := range batchRules {
		result.RulesApplied = append(result.RulesApplied, br.Name())
		for _, v := range br.CheckBatch(b, ruleCtx) {
			v.At = result.Timestamp
			if v.RowIndex < 0 {
				unrooted = append(unrooted, v)
				continue
			}
			batchViolationsByRow[v.RowIndex] = append(batchViolationsByRow[v.RowIndex], v)
		}
	}
	for _, v := range unrooted {
		if v.Severity == SeverityCritical {
			result.Critical++
		} else {
			result.Warnings++
		}
		if len(result.Samples) < cfg.maxSamples {
			result.Samples = append(result.Samples, v)
		}
	}

	for _, chunk := range b.Chunks(cfg.batchRows) {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		for idx := chunk[0]; idx < chunk[1]; idx++ {
			row := b.Rows[idx]
			result.Total++

			var violations []RuleViolation
			for _, r := range rules {
				violations = append(violations, r.Check(row, ruleCtx)...)
			}
			for name, fn := range cfg.custom {
				for _, v := range fn(row) {
					v.Rule = name
					violations = append(violations, v)
				}
			}
			violations = append(violations, batchViolationsByRow[idx]...)

			if len(violations) == 0 {
				result.Passed++
				continue
			}

			for i := range violations {
				violations[i].RowIndex = idx
				violations[i].At = result.Timestamp
				if violations[i].Severity == SeverityCritical {
					result.Critical++
				} else {
					result.Warnings++
				}
				if len(result.Samples) < cfg.maxSamples {
					result.Samples = append(result.Samples, violations[i])
				}
			}
			if cfg.quarantine != nil {
				if err := cfg.quarantine.Write(schemaName, row, violations); err != nil {
					return result, err
				}
			}
		}
	}

	if cfg.quarantine != nil {
		result.ErrorFilePath = cfg.quarantine.CurrentFile()
		if err := cfg.quarantine.AppendAudit(schemaName, result); err != nil {
			return result, err
		}
	}

	if cfg.failOnError && result.Critical > 0 {
		return result, fmt.Errorf("validation failed: %d critical violations across %d rows", result.Critical, result.Total)
	}
	return result, nil
}

func (o *options) nowOrDefault() time.Time {
	return time.Now().UTC()
}
