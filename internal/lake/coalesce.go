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
package lake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/sandeep-jaiswar/champion/internal/jsonutil"
)

// LongestObservedRun bounds lock staleness (spec.md §5: "stale >2x longest
// observed run reclaimed"); champion doesn't yet track a rolling max, so a
// conservative fixed ceiling stands in.
const LongestObservedRun = 30 * time.Minute
const StaleLockAfter = 2 * LongestObservedRun

type CoalesceReport struct {
	PartitionsScanned int
	PartitionsMerged  int
	FilesRemoved      int
	DryRun            bool
}

// Coalesce merges the part files of each raw-layer partition of dataset
// into a single part-00000.parquet, acting only on partitions that hold more
// than one part file totalling under min bytes (to avoid needlessly
// rewriting already-healthy partitions). target is not consulted: a merged
// partition always ends up as one file, and other lake layers are not
// scanned.
func Coalesce(ctx context.Context, base, dataset string, target, min int64, dryRun bool) (CoalesceReport, error) {
	report := CoalesceReport{DryRun: dryRun}

	lock := NewLock(base, dataset)
	release, err := lock.Acquire(StaleLockAfter)
	if err != nil {
		return report, err
	}
	defer release()

	root := filepath.Join(base, "raw", dataset)
	partitions, err := listPartitions(root)
	if err != nil {
		return report, err
	}

	for _, partDir := range partitions {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		report.PartitionsScanned++

		files, totalSize, err := partFiles(partDir)
		if err != nil {
			return report, err
		}
		if len(files) <= 1 || totalSize >= min {
			continue
		}

		if dryRun {
			log.Ctx(ctx).Info().Str("partition", partDir).Int("files", len(files)).Msg("would coalesce partition")
			continue
		}

		merged := filepath.Join(partDir, fmt.Sprintf(".part-merged-%s.tmp.parquet", uuid.NewString()))
		if err := mergeParquetFiles(files, merged); err != nil {
			return report, err
		}

		manifest := filepath.Join(partDir, "part-00000.parquet")
		if err := os.Rename(merged, manifest); err != nil {
			return report, err
		}
		for _, f := range files {
			if f == manifest {
				continue
			}
			if err := os.Remove(f); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("file", f).Msg("failed removing coalesced source part")
				continue
			}
			report.FilesRemoved++
		}
		report.PartitionsMerged++
	}
	return report, nil
}

func listPartitions(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() && hasParquetFiles(path) {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

func hasParquetFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".parquet" {
			return true
		}
	}
	return false
}

func partFiles(dir string) ([]string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}
	var files []string
	var total int64
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".parquet" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, 0, err
		}
		files = append(files, filepath.Join(dir, e.Name()))
		total += info.Size()
	}
	return files, total, nil
}

// mergeParquetFiles reads every row from src (as raw JSON via a generic
// reader) and rewrites them into a single file at dst, reusing the first
// file's schema for the merged output.
func mergeParquetFiles(src []string, dst string) error {
	if len(src) == 0 {
		return nil
	}

	firstSchema, err := schemaOf(src[0])
	if err != nil {
		return err
	}

	dstFile, err := local.NewLocalFileWriter(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	pw, err := writer.NewJSONWriter(firstSchema, dstFile, 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, path := range src {
		if err := copyRows(path, pw); err != nil {
			pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}

// schemaOf opens path with a schema-less reader (obj=nil decodes rows as
// map[string]interface{} against the file's embedded footer schema) and
// returns that schema so the merged output can reuse it verbatim.
func schemaOf(path string) (string, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return "", err
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return "", err
	}
	defer pr.ReadStop()
	return pr.SchemaHandler.CreateSchema(), nil
}

// copyRows streams every row of path through pw, re-encoding each row as
// JSON since parquet-go's JSONWriter accepts rows in that shape.
func copyRows(path string, pw *writer.JSONWriter) error {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return err
	}
	defer pr.ReadStop()

	rows, err := pr.ReadByNumber(int(pr.GetNumRows()))
	if err != nil {
		return err
	}
	for _, row := range rows {
		line, err := jsonutil.Marshal(row)
		if err != nil {
			return err
		}
		if err := pw.Write(string(line)); err != nil {
			return err
		}
	}
	return nil
}
