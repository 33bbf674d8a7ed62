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

// Package batch defines the canonical typed batch that flows between the
// parser, validator, lake writer, and warehouse loader (spec §3): an ordered
// sequence of typed rows plus a column schema reference.
package batch

import (
	"time"

	"github.com/sandeep-jaiswar/champion/internal/envelope"
)

type ColumnKind int

const (
	KindDate ColumnKind = iota
	KindTimestamp
	KindInt64
	KindFloat64
	KindString
	KindLowCardinalityString
)

type Column struct {
	Name     string
	Kind     ColumnKind
	Optional bool
}

// Schema describes the shape of a dataset's canonical batch.
type Schema struct {
	Dataset string
	Columns []Column
}

func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

func (s *Schema) Has(name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Row is one canonical record. Values are keyed by column name; a missing
// key on an Optional column means null. Non-key fields may be null; identity
// (dedup-key) fields never are.
type Row map[string]any

func (r Row) String(col string) (string, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (r Row) Float64(col string) (float64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func (r Row) Int64(col string) (int64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func (r Row) Time(col string) (time.Time, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Batch is the canonical batch: a column schema reference and an ordered
// sequence of rows, each stamped with an Envelope.
type Batch struct {
	Schema     *Schema
	Rows       []Row
	Envelopes  []envelope.Envelope // parallel to Rows
	SourceFile string
}

func New(schema *Schema) *Batch {
	return &Batch{Schema: schema}
}

func (b *Batch) Append(row Row, env envelope.Envelope) {
	b.Rows = append(b.Rows, row)
	b.Envelopes = append(b.Envelopes, env)
}

func (b *Batch) Len() int { return len(b.Rows) }

// Chunks yields successive row-index slices of at most size rows, used by
// the validator (spec §4.3) and lake writer to stream arbitrarily large
// batches in bounded memory.
func (b *Batch) Chunks(size int) [][2]int {
	if size <= 0 {
		size = len(b.Rows)
	}
	var chunks [][2]int
	for start := 0; start < len(b.Rows); start += size {
		end := start + size
		if end > len(b.Rows) {
			end = len(b.Rows)
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}
