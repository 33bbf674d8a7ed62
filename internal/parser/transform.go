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
	"strconv"
	"strings"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/errors"
)

// ist is loaded once; NSE/BSE bulletins carry IST-local timestamps that must
// be normalized to UTC before they reach the canonical batch.
var ist = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Embedded tzdata ships with the toolchain; this can only fail if the
		// build disables it, which champion's Dockerfile does not do.
		return time.UTC
	}
	return loc
}()

// cleanString trims surrounding whitespace and uppercases ticker-shaped
// fields; used for every symbol/ISIN/exchange column across all parsers.
func cleanString(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// nullIfEmpty coerces an empty trimmed string to "", false so callers can
// treat it as SQL NULL in batch.Row rather than as a zero value.
func nullIfEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// parseISTDate parses a bulletin date in the given layout as IST midnight and
// returns the UTC instant.
func parseISTDate(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, strings.TrimSpace(value), ist)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseFloat parses a bulletin numeric field, tolerating "-" and "" as a
// missing value (common in NSE/BSE bulk CSVs for unavailable reference
// prices).
func parseFloat(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func parseInt(s string) (int64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// checkRequiredColumns raises a *errors.SchemaError when the canonical batch
// is missing any column the dataset declares required.
func checkRequiredColumns(dataset string, present map[string]bool) error {
	def, ok := datasets.Get(dataset)
	if !ok {
		return errors.New(errors.KindConfig, "unknown dataset "+dataset, nil, nil)
	}
	var missing []string
	var found []string
	for _, col := range def.RequiredColumns {
		if present[col] {
			found = append(found, col)
		} else {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &errors.SchemaError{Expected: def.RequiredColumns, Found: found, Missing: missing}
	}
	return nil
}

// bseToNSEHeaders renames BSE bulletin column names to the NSE-canonical set
// shared by the equity_ohlc dataset definition.
var bseToNSEHeaders = map[string]string{
	"SC_CODE":    "symbol",
	"SC_NAME":    "company_name",
	"OPEN":       "open",
	"HIGH":       "high",
	"LOW":        "low",
	"CLOSE":      "close",
	"NO_OF_SHRS": "volume",
}

func renameHeaders(header []string, rename map[string]string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if renamed, ok := rename[strings.TrimSpace(h)]; ok {
			out[i] = renamed
		} else {
			out[i] = h
		}
	}
	return out
}
