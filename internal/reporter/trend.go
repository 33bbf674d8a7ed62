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
package reporter

import (
	"context"
	"time"
)

// TrendPoint is one day's aggregate within a TrendSeries.
type TrendPoint struct {
	Date        time.Time
	Runs        int
	RowsTotal   int
	RowsFailed  int
	FailureRate float64
}

// TrendSeries is Trend's return value: one point per day over the trailing
// window, oldest first, used for downstream chart generation.
type TrendSeries struct {
	WindowDays int
	Points     []TrendPoint
}

// Trend returns one TrendPoint per day over the trailing windowDays,
// ending today (UTC).
func (r *Reporter) Trend(ctx context.Context, windowDays int) (TrendSeries, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -windowDays+1)

	runs, err := r.Store.RunsSince(ctx, since)
	if err != nil {
		return TrendSeries{}, err
	}
	entries, err := readAuditLog(r.QuarantineDir)
	if err != nil {
		return TrendSeries{}, err
	}

	runsByDay := make(map[string]int)
	for _, run := range runs {
		runsByDay[dayKey(run.LogicalDate)]++
	}

	series := TrendSeries{WindowDays: windowDays}
	for i := 0; i < windowDays; i++ {
		day := since.AddDate(0, 0, i)
		point := TrendPoint{Date: day, Runs: runsByDay[dayKey(day)]}
		for _, sc := range summarizeBySchema(entries, day) {
			point.RowsTotal += sc.Total
			point.RowsFailed += sc.Failed
		}
		if point.RowsTotal > 0 {
			point.FailureRate = float64(point.RowsFailed) / float64(point.RowsTotal)
		}
		series.Points = append(series.Points, point)
	}
	return series, nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
