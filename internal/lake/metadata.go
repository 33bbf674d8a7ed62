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
	"os"
	"path/filepath"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/jsonutil"
)

// partitionMetadata is a JSON sidecar describing a partition's union schema
// and per-write row counts. Coalesce does not read it; it plans merges from
// the part files' sizes on disk.
type partitionMetadata struct {
	Dataset    string          `json:"dataset"`
	Columns    []string        `json:"columns"`
	FileCounts map[string]int  `json:"file_row_counts"`
}

func metadataPath(dir string) string {
	return filepath.Join(dir, "_metadata.json")
}

// writeMetadata merges rowCount for the just-written part file into the
// partition's _metadata.json sidecar.
func writeMetadata(dir string, schema *batch.Schema, rowCount int) error {
	meta, err := readMetadata(dir)
	if err != nil {
		meta = &partitionMetadata{Dataset: schema.Dataset, Columns: schema.Names(), FileCounts: map[string]int{}}
	}

	seq, err := latestPartFile(dir)
	if err != nil {
		return err
	}
	meta.FileCounts[seq] = rowCount

	raw, err := jsonutil.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(metadataPath(dir), raw, 0o644)
}

func readMetadata(dir string) (*partitionMetadata, error) {
	raw, err := os.ReadFile(metadataPath(dir))
	if err != nil {
		return nil, err
	}
	var meta partitionMetadata
	if err := jsonutil.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func latestPartFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	latest := ""
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".parquet" {
			latest = e.Name()
		}
	}
	return latest, nil
}
