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
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sandeep-jaiswar/champion/internal/lake/mirror"
)

type CleanupReport struct {
	PartitionsDeleted []string
	Mirrored          []string
	DryRun            bool
}

var partitionDatePattern = regexp.MustCompile(`year=(\d{4})(?:/month=(\d{2})(?:/day=(\d{2}))?)?`)

// Cleanup deletes partitions older than retentionDays, parsing each
// partition's age from its Hive key (never file mtime). When mirror is
// non-nil, matching raw-layer partitions are uploaded there before local
// deletion.
func Cleanup(ctx context.Context, base, layer, dataset string, retentionDays int, mirror *mirror.Client, dryRun bool) (CleanupReport, error) {
	report := CleanupReport{DryRun: dryRun}

	lock := NewLock(base, dataset)
	release, err := lock.Acquire(StaleLockAfter)
	if err != nil {
		return report, err
	}
	defer release()

	root := filepath.Join(base, layer, dataset)
	partitions, err := listPartitions(root)
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return report, err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	for _, partDir := range partitions {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		age, ok := partitionAge(partDir)
		if !ok || age.After(cutoff) {
			continue
		}

		if dryRun {
			log.Ctx(ctx).Info().Str("partition", partDir).Msg("would delete partition")
			report.PartitionsDeleted = append(report.PartitionsDeleted, partDir)
			continue
		}

		if layer == "raw" && mirror != nil {
			if err := mirror.UploadDir(ctx, dataset, partDir); err != nil {
				log.Ctx(ctx).Error().Err(err).Str("partition", partDir).Msg("mirror upload failed, skipping deletion")
				continue
			}
			report.Mirrored = append(report.Mirrored, partDir)
		}

		if err := os.RemoveAll(partDir); err != nil {
			return report, err
		}
		report.PartitionsDeleted = append(report.PartitionsDeleted, partDir)
	}
	return report, nil
}

// partitionAge parses the year[/month[/day]] Hive keys out of a partition path.
func partitionAge(partDir string) (time.Time, bool) {
	m := partitionDatePattern.FindStringSubmatch(partDir)
	if m == nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	month := 1
	if m[2] != "" {
		if mm, err := strconv.Atoi(m[2]); err == nil {
			month = mm
		}
	}
	day := 1
	if m[3] != "" {
		if dd, err := strconv.Atoi(m[3]); err == nil {
			day = dd
		}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
