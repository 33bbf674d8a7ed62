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
package warehouse

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// fakeConn is a minimal in-memory stand-in for clickhouse-go/v2's driver.Conn,
// used because no real ClickHouse server is reachable from these tests. It
// embeds the nil driver.Conn interface so it satisfies the full interface by
// promotion; only the methods Client and Loader actually call are
// overridden, everything else panics on a nil dereference if ever invoked.
type fakeConn struct {
	driver.Conn

	mu        sync.Mutex
	sortKey   []string // warehouse ORDER BY columns, used to collapse replays
	byKey     map[string]fakeRow
	execCount int
}

type fakeRow struct {
	ingestTime time.Time
	values     map[string]any
}

func newFakeConn(sortKey []string) *fakeConn {
	return &fakeConn{sortKey: sortKey, byKey: map[string]fakeRow{}}
}

func (c *fakeConn) Ping(ctx context.Context) error { return nil }

func (c *fakeConn) Exec(ctx context.Context, query string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execCount++
	return nil
}

var insertColumnsPattern = regexp.MustCompile(`\(([^)]*)\)`)

func (c *fakeConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m := insertColumnsPattern.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("fakeConn: could not parse column list from %q", query)
	}
	parts := strings.Split(m[1], ",")
	cols := make([]string, len(parts))
	for i, p := range parts {
		cols[i] = strings.TrimSpace(p)
	}
	return &fakeBatch{conn: c, cols: cols}, nil
}

func (c *fakeConn) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &fakeCountRow{n: int64(len(c.byKey))}
}

func (c *fakeConn) Close() error { return nil }

// ingest collapses rows ReplacingMergeTree-style: rows sharing the same
// sortKey values keep only the one with the greatest ingest_time, mirroring
// the real engine's background merge so a replayed load is a no-op once
// CountPartition is read back.
func (c *fakeConn) ingest(cols []string, rows [][]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := make(map[string]int, len(cols))
	for i, name := range cols {
		idx[name] = i
	}
	ingestIdx, hasIngest := idx["ingest_time"]

	for _, row := range rows {
		var key strings.Builder
		for _, k := range c.sortKey {
			if i, ok := idx[k]; ok {
				fmt.Fprintf(&key, "%v|", row[i])
			}
		}
		values := make(map[string]any, len(cols))
		for name, i := range idx {
			values[name] = row[i]
		}

		var ingestTime time.Time
		if hasIngest {
			ingestTime, _ = row[ingestIdx].(time.Time)
		}

		existing, exists := c.byKey[key.String()]
		if !exists || !hasIngest || ingestTime.After(existing.ingestTime) {
			c.byKey[key.String()] = fakeRow{ingestTime: ingestTime, values: values}
		}
	}
}

type fakeBatch struct {
	driver.Batch

	conn *fakeConn
	cols []string
	rows [][]any
}

func (b *fakeBatch) Append(v ...any) error {
	row := make([]any, len(v))
	copy(row, v)
	b.rows = append(b.rows, row)
	return nil
}

func (b *fakeBatch) Send() error {
	b.conn.ingest(b.cols, b.rows)
	return nil
}

func (b *fakeBatch) Rows() int { return len(b.rows) }

func (b *fakeBatch) Abort() error { return nil }

type fakeCountRow struct {
	n int64
}

func (r *fakeCountRow) Err() error { return nil }

func (r *fakeCountRow) Scan(dest ...any) error {
	if len(dest) != 1 {
		return fmt.Errorf("fakeCountRow: expected 1 scan target, got %d", len(dest))
	}
	ptr, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("fakeCountRow: expected *int64 scan target")
	}
	*ptr = r.n
	return nil
}

func (r *fakeCountRow) ScanStruct(dest any) error {
	return fmt.Errorf("fakeCountRow: ScanStruct unsupported")
}
