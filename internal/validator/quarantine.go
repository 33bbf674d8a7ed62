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
package validator

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/jsonutil"
)

// Quarantine persists failing rows and a per-run audit entry under a single
// directory, per spec.md §6's quarantine contract.
type Quarantine struct {
	Dir   string
	Clock clock.Clock

	mu          sync.Mutex
	currentFile string
	rows        []quarantineRow
	auditFile   *os.File
	auditWriter *bufio.Writer
}

type quarantineRow struct {
	RowIndex   int    `csv:"row_index"`
	Rule       string `csv:"rule"`
	Severity   string `csv:"severity"`
	Detail     string `csv:"detail"`
	RowPreview string `csv:"row_preview"`
}

// AuditEntry is one audit_log.jsonl line; internal/reporter reads these back
// to compute per-schema failure rates and anomaly flags.
type AuditEntry struct {
	Schema    string    `json:"schema"`
	Timestamp time.Time `json:"timestamp"`
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	Critical  int       `json:"critical"`
	Warnings  int       `json:"warnings"`
	ErrorFile string    `json:"error_file"`
}

func NewQuarantine(dir string, clk clock.Clock) *Quarantine {
	return &Quarantine{Dir: dir, Clock: clk}
}

// Write appends a failing row plus its violations to the run's in-memory
// buffer; the CSV file itself is written by AppendAudit at the end of the
// validation run, so every quarantined row of the run is held in memory
// until then.
func (q *Quarantine) Write(schema string, row batch.Row, violations []RuleViolation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, v := range violations {
		q.rows = append(q.rows, quarantineRow{
			RowIndex:   v.RowIndex,
			Rule:       v.Rule,
			Severity:   string(v.Severity),
			Detail:     v.Detail,
			RowPreview: fmt.Sprintf("%v", map[string]any(row)),
		})
	}
	if q.currentFile == "" {
		q.currentFile = filepath.Join(q.Dir, fmt.Sprintf("%s_failures_%d.csv", schema, q.Clock.Now().UnixNano()))
	}
	return nil
}

func (q *Quarantine) CurrentFile() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentFile
}

// AppendAudit flushes the buffered quarantine rows to their CSV file (if
// any) and appends one JSON line describing the overall run to
// audit_log.jsonl, opened append-only so concurrent flow runs never clobber
// each other's history.
func (q *Quarantine) AppendAudit(schema string, result ValidationResult) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := os.MkdirAll(q.Dir, 0o755); err != nil {
		return err
	}

	if len(q.rows) > 0 && q.currentFile != "" {
		out, err := gocsv.MarshalBytes(&q.rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(q.currentFile, out, 0o644); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(filepath.Join(q.Dir, "audit_log.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	entry := AuditEntry{
		Schema:    schema,
		Timestamp: result.Timestamp,
		Total:     result.Total,
		Passed:    result.Passed,
		Critical:  result.Critical,
		Warnings:  result.Warnings,
		ErrorFile: q.currentFile,
	}
	line, err := jsonutil.Marshal(entry)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if _, err := w.Write(append(line, '\n')); err != nil {
		return err
	}
	return w.Flush()
}
