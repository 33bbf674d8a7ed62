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
package flow

import (
	"context"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/calendar"
)

// Backfill runs f once for every trading day between from and until
// (inclusive), in calendar order, stopping at the first day whose run
// returns an aggregated error so a broken upstream format doesn't silently
// skip ahead and leave a gap.
func (o *Orchestrator) Backfill(ctx context.Context, f Flow, cal *calendar.Calendar, from, until time.Time) ([]*RunResult, error) {
	var results []*RunResult
	for _, day := range cal.TradingDaysBetween(from, until) {
		if ctx.Err() != nil {
			break
		}
		result, err := o.Run(ctx, f, day)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if result.Err != nil {
			return results, result.Err
		}
	}
	return results, nil
}

// ResumeFrom reports the logical date a backfill of flowName should start
// from: the day after its last successful run, or zero if it has never run.
func (o *Orchestrator) ResumeFrom(ctx context.Context, flowName string, cal *calendar.Calendar) (time.Time, error) {
	last, err := o.Store.LastSuccessfulRun(ctx, flowName)
	if err != nil {
		return time.Time{}, err
	}
	if last.IsZero() {
		return last, nil
	}
	return cal.NextTradingDay(last.AddDate(0, 0, 1)), nil
}
