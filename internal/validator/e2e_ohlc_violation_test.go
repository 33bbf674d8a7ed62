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
package validator_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/envelope"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

var _ = Describe("end-to-end: a bhavcopy with one OHLC violation", func() {
	It("reports critical violations and writes the quarantine file and audit log", func() {
		dir, err := os.MkdirTemp("", "champion-quarantine-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		schema := &batch.Schema{Dataset: "equity_ohlc"}
		b := batch.New(schema)
		clk := clock.NewStepped(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), time.Second)

		good := batch.Row{"symbol": "TCS", "open": 3500.0, "high": 3550.0, "low": 3480.0, "close": 3520.0, "volume": int64(100000)}
		bad := batch.Row{"symbol": "INFY", "open": 1500.0, "high": 1400.0, "low": 1450.0, "close": 1420.0, "volume": int64(50000)}

		b.Append(good, envelope.Stamp(clk, "NSE", "v1", "TCS", clk.Now()))
		b.Append(bad, envelope.Stamp(clk, "NSE", "v1", "INFY", clk.Now()))

		q := validator.NewQuarantine(dir, clock.Real{})
		result, err := validator.Validate(context.Background(), b, "equity_ohlc", validator.WithQuarantine(q))
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Total).To(Equal(2))
		Expect(result.Critical).To(BeNumerically(">=", 1))
		Expect(result.ErrorFilePath).NotTo(BeEmpty())

		_, statErr := os.Stat(result.ErrorFilePath)
		Expect(statErr).NotTo(HaveOccurred())

		auditPath := filepath.Join(dir, "audit_log.jsonl")
		_, statErr = os.Stat(auditPath)
		Expect(statErr).NotTo(HaveOccurred())
	})
})
