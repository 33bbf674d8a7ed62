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
package reporter_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/jsonutil"
	"github.com/sandeep-jaiswar/champion/internal/reporter"
	"github.com/sandeep-jaiswar/champion/internal/state"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

func writeAuditLines(dir string, entries ...validator.AuditEntry) {
	Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
	f, err := os.OpenFile(filepath.Join(dir, "audit_log.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()
	for _, e := range entries {
		line, err := jsonutil.Marshal(e)
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Write(append(line, '\n'))
		Expect(err).NotTo(HaveOccurred())
	}
}

var _ = Describe("DailyReport", func() {
	var dir string
	var day time.Time

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		day = time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	})

	It("summarizes runs and validation counts for the date", func() {
		store := &fakeRunStore{runs: []state.FlowRunSummary{
			{FlowName: "nse_equity_bhavcopy", LogicalDate: day, Status: state.RunSuccess},
			{FlowName: "bse_equity_bhavcopy", LogicalDate: day, Status: state.RunFailed},
		}}
		writeAuditLines(dir, validator.AuditEntry{
			Schema: "equity_bhavcopy", Timestamp: day, Total: 100, Passed: 95, Critical: 3, Warnings: 2,
		})

		r := reporter.New(store, dir)
		report, err := r.DailyReport(context.Background(), day)
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Runs).To(Equal(2))
		Expect(report.RunsSucceeded).To(Equal(1))
		Expect(report.RunsFailed).To(Equal(1))
		Expect(report.RowsTotal).To(Equal(100))
		Expect(report.RowsFailed).To(Equal(5))
		Expect(report.OverallFailureRate).To(BeNumerically("~", 0.05, 0.001))
	})

	It("flags a schema failure rate anomaly above 10%", func() {
		store := &fakeRunStore{}
		writeAuditLines(dir, validator.AuditEntry{
			Schema: "equity_bhavcopy", Timestamp: day, Total: 100, Passed: 80, Critical: 15, Warnings: 5,
		})

		r := reporter.New(store, dir)
		report, err := r.DailyReport(context.Background(), day)
		Expect(err).NotTo(HaveOccurred())

		var found bool
		for _, a := range report.Anomalies {
			if a.Kind == "schema_failure_rate" && a.Schema == "equity_bhavcopy" {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("flags a volume spike against the trailing mean", func() {
		store := &fakeRunStore{}
		for i := 1; i <= 7; i++ {
			writeAuditLines(dir, validator.AuditEntry{
				Schema: "equity_bhavcopy", Timestamp: day.AddDate(0, 0, -i), Total: 100, Passed: 100,
			})
		}
		writeAuditLines(dir, validator.AuditEntry{
			Schema: "equity_bhavcopy", Timestamp: day, Total: 500, Passed: 500,
		})

		r := reporter.New(store, dir)
		report, err := r.DailyReport(context.Background(), day)
		Expect(err).NotTo(HaveOccurred())

		var found bool
		for _, a := range report.Anomalies {
			if a.Kind == "volume_spike" {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("reports no anomalies for a clean, steady day", func() {
		store := &fakeRunStore{runs: []state.FlowRunSummary{
			{FlowName: "nse_equity_bhavcopy", LogicalDate: day, Status: state.RunSuccess},
		}}
		for i := 1; i <= 7; i++ {
			writeAuditLines(dir, validator.AuditEntry{
				Schema: "equity_bhavcopy", Timestamp: day.AddDate(0, 0, -i), Total: 100, Passed: 99, Critical: 1,
			})
		}
		writeAuditLines(dir, validator.AuditEntry{
			Schema: "equity_bhavcopy", Timestamp: day, Total: 100, Passed: 99, Critical: 1,
		})

		r := reporter.New(store, dir)
		report, err := r.DailyReport(context.Background(), day)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Anomalies).To(BeEmpty())
	})
})

var _ = Describe("Trend", func() {
	It("returns one point per day over the trailing window", func() {
		dir := GinkgoT().TempDir()
		r := reporter.New(&fakeRunStore{}, dir)

		series, err := r.Trend(context.Background(), 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(series.WindowDays).To(Equal(5))
		Expect(series.Points).To(HaveLen(5))
	})
})
