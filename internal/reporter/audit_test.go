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
	"encoding/csv"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/reporter"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

var _ = Describe("quarantine audit cross-check", func() {
	It("references an error file that exists and whose row count matches failed_rows", func() {
		dir := GinkgoT().TempDir()
		now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
		q := validator.NewQuarantine(dir, clock.Fixed{At: now})

		violations := []validator.RuleViolation{
			{RowIndex: 0, Rule: "not_null", Severity: validator.SeverityCritical, Detail: "symbol missing"},
			{RowIndex: 1, Rule: "not_null", Severity: validator.SeverityCritical, Detail: "symbol missing"},
		}
		Expect(q.Write("equity_bhavcopy", batch.Row{"symbol": nil}, violations)).To(Succeed())

		result := validator.ValidationResult{
			Total:     10,
			Passed:    8,
			Critical:  2,
			Warnings:  0,
			Timestamp: now,
		}
		Expect(q.AppendAudit("equity_bhavcopy", result)).To(Succeed())

		r := reporter.New(&fakeRunStore{}, dir)
		report, err := r.DailyReport(context.Background(), now)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.BySchema).To(HaveLen(1))

		sc := report.BySchema[0]
		Expect(sc.Schema).To(Equal("equity_bhavcopy"))
		Expect(sc.Failed).To(Equal(2))

		errorFile := q.CurrentFile()
		Expect(errorFile).NotTo(BeEmpty())
		_, statErr := os.Stat(errorFile)
		Expect(statErr).NotTo(HaveOccurred())

		f, err := os.Open(errorFile)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		// one header row plus one row per violation
		Expect(records).To(HaveLen(len(violations) + 1))
	})
})
