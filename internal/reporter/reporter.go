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

	"github.com/sandeep-jaiswar/champion/internal/state"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

const (
	overallFailureThreshold   = 0.05
	schemaFailureThreshold    = 0.10
	volumeSpikeMultiple       = 2.0
	defaultTrendWindowForMean = 7
)

// RunStore is the subset of *state.Store the reporter needs, narrowed the
// same way internal/flow.Store is, so tests supply an in-memory fake.
type RunStore interface {
	RunsForDate(ctx context.Context, logicalDate time.Time) ([]state.FlowRunSummary, error)
	RunsSince(ctx context.Context, since time.Time) ([]state.FlowRunSummary, error)
}

// Reporter aggregates a quarantine directory's audit log and a Store's flow
// run history into daily reports and trends.
type Reporter struct {
	Store         RunStore
	QuarantineDir string
}

func New(store RunStore, quarantineDir string) *Reporter {
	return &Reporter{Store: store, QuarantineDir: quarantineDir}
}

// SchemaCounts is one schema's aggregated row counts for a report window.
type SchemaCounts struct {
	Schema      string
	Total       int
	Failed      int
	FailureRate float64
}

// Anomaly is one flagged deviation per spec.md §4.8's three anomaly rules.
type Anomaly struct {
	Kind      string // "overall_failure_rate", "schema_failure_rate", "volume_spike"
	Schema    string // empty for overall/volume anomalies
	Value     float64
	Threshold float64
	Detail    string
}

// Report is DailyReport's return value: one logical date's run and
// validation summary, compared against the prior equal window (the day
// before) and flagged for anomalies.
type Report struct {
	Date               time.Time
	Runs               int
	RunsSucceeded      int
	RunsFailed         int
	RowsTotal          int
	RowsFailed         int
	OverallFailureRate float64
	BySchema           []SchemaCounts
	PriorRowsTotal     int
	PriorFailureRate   float64
	RowsTotalDelta     int
	FailureRateDelta   float64
	Anomalies          []Anomaly
}

// DailyReport summarizes date's flow runs and validation audit entries.
func (r *Reporter) DailyReport(ctx context.Context, date time.Time) (Report, error) {
	runs, err := r.Store.RunsForDate(ctx, date)
	if err != nil {
		return Report{}, err
	}
	entries, err := readAuditLog(r.QuarantineDir)
	if err != nil {
		return Report{}, err
	}

	report := Report{Date: date}
	for _, run := range runs {
		report.Runs++
		if run.Status == state.RunSuccess {
			report.RunsSucceeded++
		} else if run.Status == state.RunFailed {
			report.RunsFailed++
		}
	}

	bySchema := summarizeBySchema(entries, date)
	report.BySchema = bySchema
	for _, sc := range bySchema {
		report.RowsTotal += sc.Total
		report.RowsFailed += sc.Failed
	}
	if report.RowsTotal > 0 {
		report.OverallFailureRate = float64(report.RowsFailed) / float64(report.RowsTotal)
	}

	priorSchema := summarizeBySchema(entries, date.AddDate(0, 0, -1))
	for _, sc := range priorSchema {
		report.PriorRowsTotal += sc.Total
	}
	priorFailed := 0
	for _, sc := range priorSchema {
		priorFailed += sc.Failed
	}
	if report.PriorRowsTotal > 0 {
		report.PriorFailureRate = float64(priorFailed) / float64(report.PriorRowsTotal)
	}
	report.RowsTotalDelta = report.RowsTotal - report.PriorRowsTotal
	report.FailureRateDelta = report.OverallFailureRate - report.PriorFailureRate

	trailingMean := trailingMeanVolume(entries, date, defaultTrendWindowForMean)
	report.Anomalies = detectAnomalies(report, trailingMean)

	return report, nil
}

// trailingMeanVolume averages RowsTotal over the windowDays before date
// (exclusive of date itself), the baseline DailyReport's volume-spike
// anomaly compares against.
func trailingMeanVolume(entries []validator.AuditEntry, date time.Time, windowDays int) float64 {
	if windowDays == 0 {
		return 0
	}
	var total int
	for i := 1; i <= windowDays; i++ {
		day := date.AddDate(0, 0, -i)
		for _, sc := range summarizeBySchema(entries, day) {
			total += sc.Total
		}
	}
	return float64(total) / float64(windowDays)
}

func detectAnomalies(report Report, trailingMeanVolume float64) []Anomaly {
	var anomalies []Anomaly

	if report.OverallFailureRate > overallFailureThreshold {
		anomalies = append(anomalies, Anomaly{
			Kind:      "overall_failure_rate",
			Value:     report.OverallFailureRate,
			Threshold: overallFailureThreshold,
			Detail:    "overall validation failure rate exceeds 5%",
		})
	}

	for _, sc := range report.BySchema {
		if sc.FailureRate > schemaFailureThreshold {
			anomalies = append(anomalies, Anomaly{
				Kind:      "schema_failure_rate",
				Schema:    sc.Schema,
				Value:     sc.FailureRate,
				Threshold: schemaFailureThreshold,
				Detail:    "schema validation failure rate exceeds 10%",
			})
		}
	}

	if trailingMeanVolume > 0 && float64(report.RowsTotal) > volumeSpikeMultiple*trailingMeanVolume {
		anomalies = append(anomalies, Anomaly{
			Kind:      "volume_spike",
			Value:     float64(report.RowsTotal),
			Threshold: volumeSpikeMultiple * trailingMeanVolume,
			Detail:    "row volume more than 2x the trailing mean",
		})
	}

	return anomalies
}
