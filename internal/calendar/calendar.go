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

// Package calendar is the NSE/BSE trading-day calendar consulted by the
// fetcher (to tell an expected 404 on a market holiday apart from a real
// upstream failure), by the validator (to assess trading_day_completeness
// across a batch, spec §4.3) and by flow backfills (to enumerate the days
// to run).
package calendar

import (
	"sync"
	"time"
)

// Calendar holds the set of known non-trading dates for one exchange.
type Calendar struct {
	mu       sync.RWMutex
	exchange string
	holidays map[string]string // "2026-01-26" -> description
}

func New(exchange string) *Calendar {
	return &Calendar{exchange: exchange, holidays: make(map[string]string)}
}

// LoadHolidays replaces the known holiday set from parsed trading_calendar
// rows (date, description), normalizing t to its date component in UTC.
func (c *Calendar) LoadHolidays(entries map[time.Time]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays = make(map[string]string, len(entries))
	for t, desc := range entries {
		c.holidays[dateKey(t)] = desc
	}
}

// IsTradingDay reports whether t is a trading day: not a weekend, not a
// known market holiday.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, isHoliday := c.holidays[dateKey(t)]
	return !isHoliday
}

// HolidayDescription returns the reason t is a holiday, if any.
func (c *Calendar) HolidayDescription(t time.Time) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	desc, ok := c.holidays[dateKey(t)]
	return desc, ok
}

// NextTradingDay returns the first trading day on or after t.
func (c *Calendar) NextTradingDay(t time.Time) time.Time {
	d := t
	for !c.IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// TradingDaysBetween returns the trading days in [start, end], inclusive —
// used by flow.Backfill to enumerate the logical dates to run.
func (c *Calendar) TradingDaysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
