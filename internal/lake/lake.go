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

// Package lake writes canonical batches as Hive-partitioned Parquet files
// under write-temp-then-rename atomicity, and coalesces/retires them later.
package lake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/jsonutil"
)

type Compression string

const (
	CompressionSnappy Compression = "snappy"
	CompressionZstd   Compression = "zstd"

	// MinFileSize is the coalesce command's default merge threshold;
	// TargetFileSize is the writer's row-group size and the command's
	// default target.
	TargetFileSize = 128 * 1024 * 1024
	MinFileSize    = 10 * 1024 * 1024
)

// dateColumns lists every dataset's identity date column, in lookup order;
// partitionValue consults this to find "the" date for year/month/day/quarter
// partition keys regardless of which dataset is being written.
var dateColumns = []string{"trade_date", "ex_date", "effective_date", "deal_date", "as_of_date", "observation_date", "report_period", "date"}

func codecFor(c Compression) parquet.CompressionCodec {
	if c == CompressionZstd {
		return parquet.CompressionCodec_ZSTD
	}
	return parquet.CompressionCodec_SNAPPY
}

// Write serializes b to a new Hive-partitioned Parquet part file under base,
// returning the final file's path. Partition columns named in partitions are
// both used to build the directory path and dropped from the row projection
// written into the file body. A batch with zero rows is a no-op.
func Write(ctx context.Context, base string, b *batch.Batch, layer, dataset string, partitions []string, compression Compression) (string, error) {
	if b == nil || b.Len() == 0 {
		return "", nil
	}

	partDir := partitionPath(b.Rows[0], partitions)
	dir := filepath.Join(base, layer, dataset, partDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	seq, err := nextPartSeq(dir)
	if err != nil {
		return "", err
	}
	final := filepath.Join(dir, fmt.Sprintf("part-%05d.parquet", seq))
	tmp := final + ".tmp"

	projected, jsonSchema := projectRows(b, partitions)

	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return "", err
	}

	pw, err := writer.NewJSONWriter(jsonSchema, fw, 4)
	if err != nil {
		fw.Close()
		return "", err
	}
	pw.RowGroupSize = TargetFileSize
	pw.PageSize = 8 * 1024
	pw.CompressionType = codecFor(compression)

	for _, row := range projected {
		line, err := jsonutil.Marshal(row)
		if err != nil {
			pw.WriteStop()
			fw.Close()
			return "", err
		}
		if err := pw.Write(string(line)); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("file", tmp).Msg("parquet write failed for row")
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", err
	}
	if err := fw.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp, final); err != nil {
		return "", err
	}

	if err := writeMetadata(dir, b.Schema, len(projected)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed writing lake partition metadata sidecar")
	}

	return final, nil
}

// partitionPath builds the Hive-style "<k1>=<v1>/<k2>=<v2>" suffix from one
// representative row's values — every row in a batch is assumed to share the
// same partition values, since the flow orchestrator chunks by logical
// date/dataset upstream of the lake writer.
func partitionPath(row batch.Row, partitions []string) string {
	var parts []string
	for _, p := range partitions {
		parts = append(parts, fmt.Sprintf("%s=%s", p, partitionValue(row, p)))
	}
	return filepath.Join(parts...)
}

func rowDate(row batch.Row) (time.Time, bool) {
	for _, col := range dateColumns {
		if t, ok := row.Time(col); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func partitionValue(row batch.Row, col string) string {
	switch col {
	case "year":
		if t, ok := rowDate(row); ok {
			return fmt.Sprintf("%04d", t.Year())
		}
	case "month":
		if t, ok := rowDate(row); ok {
			return fmt.Sprintf("%02d", t.Month())
		}
	case "day":
		if t, ok := rowDate(row); ok {
			return fmt.Sprintf("%02d", t.Day())
		}
	case "quarter":
		if v, ok := row.Int64("quarter"); ok {
			return fmt.Sprintf("Q%d", v)
		}
		if t, ok := rowDate(row); ok {
			return fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1)
		}
	}
	if v, ok := row.String(col); ok {
		return v
	}
	return "unknown"
}

func nextPartSeq(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	max := -1
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "part-") || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		var seq int
		if _, err := fmt.Sscanf(e.Name(), "part-%05d.parquet", &seq); err == nil && seq > max {
			max = seq
		}
	}
	return max + 1, nil
}

// projectRows drops partition columns from the row body (they're already
// encoded in the directory path) and builds the flat parquet-go JSON schema
// string describing the remaining columns.
func projectRows(b *batch.Batch, partitions []string) ([]batch.Row, string) {
	drop := map[string]bool{}
	for _, p := range partitions {
		drop[p] = true
	}

	timeCols := map[string]bool{}
	for _, col := range b.Schema.Columns {
		if col.Kind == batch.KindDate || col.Kind == batch.KindTimestamp {
			timeCols[col.Name] = true
		}
	}

	out := make([]batch.Row, 0, len(b.Rows))
	for _, row := range b.Rows {
		projected := batch.Row{}
		for k, v := range row {
			if drop[k] {
				continue
			}
			if timeCols[k] {
				if t, ok := v.(time.Time); ok {
					projected[k] = t.UnixMilli()
					continue
				}
			}
			projected[k] = v
		}
		out = append(out, projected)
	}
	return out, jsonSchemaFor(b.Schema, drop)
}

func jsonSchemaFor(schema *batch.Schema, drop map[string]bool) string {
	var fields []string
	for _, col := range schema.Columns {
		if drop[col.Name] {
			continue
		}
		fields = append(fields, fmt.Sprintf(`{"Tag":"name=%s, type=%s, repetitiontype=OPTIONAL"}`, col.Name, parquetType(col.Kind)))
	}
	return fmt.Sprintf(`{"Tag":"name=%s","Fields":[%s]}`, schema.Dataset, strings.Join(fields, ","))
}

func parquetType(k batch.ColumnKind) string {
	switch k {
	case batch.KindInt64:
		return "INT64"
	case batch.KindFloat64:
		return "DOUBLE"
	case batch.KindTimestamp, batch.KindDate:
		return "INT64, convertedtype=TIMESTAMP_MILLIS"
	default:
		return "BYTE_ARRAY, convertedtype=UTF8"
	}
}
