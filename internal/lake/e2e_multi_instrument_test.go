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
package lake_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/lake"
)

var _ = Describe("end-to-end: a bhavcopy covering multiple instruments", func() {
	It("writes every instrument's rows into the same day's partition file", func() {
		dir, err := os.MkdirTemp("", "champion-lake-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		tradeDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		schema := &batch.Schema{
			Dataset: datasets.EquityOHLC,
			Columns: []batch.Column{
				{Name: "symbol", Kind: batch.KindLowCardinalityString},
				{Name: "trade_date", Kind: batch.KindDate},
				{Name: "close", Kind: batch.KindFloat64},
			},
		}
		b := batch.New(schema)
		for _, sym := range []string{"TCS", "INFY", "RELIANCE"} {
			b.Rows = append(b.Rows, batch.Row{"symbol": sym, "trade_date": tradeDate, "close": 100.0})
		}

		path, err := lake.Write(context.Background(), dir, b, "raw", datasets.EquityOHLC,
			[]string{"year", "month", "day"}, lake.CompressionSnappy)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).NotTo(BeEmpty())

		expectedDir := filepath.Join(dir, "raw", datasets.EquityOHLC, "year=2026", "month=01", "day=05")
		_, statErr := os.Stat(expectedDir)
		Expect(statErr).NotTo(HaveOccurred())

		_, statErr = os.Stat(path)
		Expect(statErr).NotTo(HaveOccurred())

		_, statErr = os.Stat(filepath.Join(expectedDir, "_metadata.json"))
		Expect(statErr).NotTo(HaveOccurred())
	})
})
