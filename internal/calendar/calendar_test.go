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
package calendar_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/calendar"
)

var _ = Describe("Calendar", func() {
	var cal *calendar.Calendar

	BeforeEach(func() {
		cal = calendar.New("NSE")
		cal.LoadHolidays(map[time.Time]string{
			time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC): "Republic Day",
		})
	})

	It("treats weekends as non-trading days", func() {
		saturday := time.Date(2026, 1, 24, 0, 0, 0, 0, time.UTC)
		Expect(cal.IsTradingDay(saturday)).To(BeFalse())
	})

	It("treats a declared holiday as a non-trading day", func() {
		republicDay := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
		Expect(cal.IsTradingDay(republicDay)).To(BeFalse())
		desc, ok := cal.HolidayDescription(republicDay)
		Expect(ok).To(BeTrue())
		Expect(desc).To(Equal("Republic Day"))
	})

	It("treats an ordinary weekday as a trading day", func() {
		tuesday := time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)
		Expect(cal.IsTradingDay(tuesday)).To(BeTrue())
	})

	It("advances to the next trading day past a holiday", func() {
		republicDay := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
		next := cal.NextTradingDay(republicDay)
		Expect(next).To(Equal(time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)))
	})

	It("counts trading days in a range, excluding weekends and holidays", func() {
		start := time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC) // Friday
		end := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)   // Wednesday
		days := cal.TradingDaysBetween(start, end)
		// Fri 23, (Sat/Sun skipped), Mon 26 is a holiday (skipped), Tue 27, Wed 28
		Expect(days).To(HaveLen(3))
	})
})
