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

// Package parser turns one downloaded source file into a canonical
// batch.Batch: one file per source family, each doing CSV/XBRL decoding into
// a private per-source struct, canonical transforms, required-column
// checking, and envelope stamping. No parser ever builds an envelope.Envelope
// by hand — Stamp is the only constructor.
package parser

import (
	"context"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/batch"
)

// SourceDescriptor names the exchange/provider a file came from, carried
// through to the envelope's Source field and used to pick canonical-header
// rename maps (e.g. BSE's column names differ from NSE's canonical set).
type SourceDescriptor struct {
	Exchange string // "NSE" | "BSE"
	Dataset  string // one of the internal/datasets constants
}

// Parser decodes one file on disk into a canonical batch.Batch. A file with a
// zero-row valid payload yields (nil, nil); schema drift yields
// (nil, *errors.SchemaError).
type Parser interface {
	Parse(ctx context.Context, path string, desc SourceDescriptor, logicalDate time.Time) (*batch.Batch, error)
}
