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

// Package reporter is champion's C8: it aggregates internal/validator's
// append-only audit log and internal/state's flow run history into a daily
// report and a trailing trend series, per spec.md §4.8.
package reporter

import (
	"bufio"
	"os"
	"path/filepath"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/jsonutil"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

// readAuditLog reads every well-formed line of dir/audit_log.jsonl. A
// missing file is not an error (no validation has run yet); per spec.md §5
// readers tolerate a partial final line left by a writer that was still
// flushing when this read started, so a line that fails to unmarshal is
// skipped rather than treated as a fatal read error.
func readAuditLog(dir string) ([]validator.AuditEntry, error) {
	f, err := os.Open(filepath.Join(dir, "audit_log.jsonl"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []validator.AuditEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry validator.AuditEntry
		if err := jsonutil.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
