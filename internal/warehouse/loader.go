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
	"strings"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/errors"
)

const DefaultChunkRows = 100_000

type Loader interface {
	Load(ctx context.Context, b *batch.Batch, table string, partitionWhere string, chunkRows int) (int64, error)
}

type loader struct {
	client *Client
}

func NewLoader(client *Client) Loader {
	return &loader{client: client}
}

// Load chunks b into native ClickHouse batch inserts of at most chunkRows
// rows each, then verifies the post-load partition row count against b's
// row count, raising a fatal LoadMismatchError on disagreement.
func (l *loader) Load(ctx context.Context, b *batch.Batch, table, partitionWhere string, chunkRows int) (int64, error) {
	if b == nil || b.Len() == 0 {
		return 0, nil
	}
	if chunkRows <= 0 {
		chunkRows = DefaultChunkRows
	}

	cm := ColumnMapFor(table, b.Schema)
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(cm.Columns, ", "))

	var inserted int64
	for _, bounds := range b.Chunks(chunkRows) {
		select {
		case <-ctx.Done():
			return inserted, errors.Cancelled("load cancelled")
		default:
		}

		chunkBatch, err := l.client.conn.PrepareBatch(ctx, insertSQL)
		if err != nil {
			return inserted, &errors.ConnectionError{Cause: err}
		}
		for idx := bounds[0]; idx < bounds[1]; idx++ {
			if err := chunkBatch.Append(cm.Values(b.Rows[idx])...); err != nil {
				return inserted, &errors.SchemaMismatchError{Table: table, Details: err.Error()}
			}
		}
		if err := chunkBatch.Send(); err != nil {
			return inserted, &errors.ConnectionError{Cause: err}
		}
		inserted += int64(bounds[1] - bounds[0])
	}

	count, err := l.client.CountPartition(ctx, table, partitionWhere)
	if err != nil {
		return inserted, err
	}
	if count < int64(b.Len()) {
		return inserted, &errors.LoadMismatchError{Table: table, Partition: partitionWhere, Expected: int64(b.Len()), Actual: count}
	}
	return inserted, nil
}
