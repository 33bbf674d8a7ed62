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
package calendar

import (
	"time"

	"github.com/sandeep-jaiswar/champion/internal/batch"
)

// FromBatch builds the holiday set directly from a parsed trading_calendar
// batch (internal/parser.TradingCalendar's output): every row is one known
// non-trading date.
func FromBatch(b *batch.Batch) map[time.Time]string {
	entries := make(map[time.Time]string, b.Len())
	for _, row := range b.Rows {
		date, ok := row.Time("date")
		if !ok {
			continue
		}
		desc, _ := row.String("day_type")
		entries[date] = desc
	}
	return entries
}
