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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/validator"
)

var _ = Describe("OHLC ordering rule", func() {
	ctx := validator.RuleContext{Now: time.Now().UTC()}

	It("accepts a row where low <= open,close <= high", func() {
		row := batch.Row{"open": 100.0, "high": 110.0, "low": 95.0, "close": 105.0}
		var violations []validator.RuleViolation
		for _, r := range validator.RulesFor("equity_ohlc") {
			violations = append(violations, r.Check(row, ctx)...)
		}
		Expect(violations).To(BeEmpty())
	})

	It("flags a row where high < low", func() {
		row := batch.Row{"open": 100.0, "high": 90.0, "low": 95.0, "close": 92.0}
		var found bool
		for _, r := range validator.RulesFor("equity_ohlc") {
			for _, v := range r.Check(row, ctx) {
				if v.Rule == "ohlc_high_low" {
					found = true
				}
			}
		}
		Expect(found).To(BeTrue())
	})

	It("flags a close price outside the high/low range", func() {
		row := batch.Row{"open": 100.0, "high": 110.0, "low": 95.0, "close": 200.0}
		var found bool
		for _, r := range validator.RulesFor("equity_ohlc") {
			for _, v := range r.Check(row, ctx) {
				if v.Rule == "ohlc_close_in_range" {
					found = true
				}
			}
		}
		Expect(found).To(BeTrue())
	})
})
