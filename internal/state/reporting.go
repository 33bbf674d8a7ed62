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
package state

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sandeep-jaiswar/champion/internal/errors"
)

// FlowRunSummary is one flow_runs row, as read back by internal/reporter.
type FlowRunSummary struct {
	RunID       uuid.UUID
	FlowName    string
	LogicalDate time.Time
	Status      RunStatus
	StartedAt   time.Time
	FinishedAt  *time.Time
	Error       *string
}

// RunsForDate returns every flow_runs row recorded for logicalDate, across
// all flows, the set internal/reporter.DailyReport summarizes.
func (s *Store) RunsForDate(ctx context.Context, logicalDate time.Time) ([]FlowRunSummary, error) {
	return s.queryRuns(ctx,
		`SELECT run_id, flow_name, logical_date, status, started_at, finished_at, error
		 FROM flow_runs WHERE logical_date = $1 ORDER BY flow_name`, logicalDate)
}

// RunsSince returns every flow_runs row with logical_date >= since, the
// window internal/reporter.Trend aggregates over.
func (s *Store) RunsSince(ctx context.Context, since time.Time) ([]FlowRunSummary, error) {
	return s.queryRuns(ctx,
		`SELECT run_id, flow_name, logical_date, status, started_at, finished_at, error
		 FROM flow_runs WHERE logical_date >= $1 ORDER BY logical_date`, since)
}

func (s *Store) queryRuns(ctx context.Context, sql string, arg time.Time) ([]FlowRunSummary, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, arg)
	if err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	defer rows.Close()

	var out []FlowRunSummary
	for rows.Next() {
		var r FlowRunSummary
		if err := rows.Scan(&r.RunID, &r.FlowName, &r.LogicalDate, &r.Status, &r.StartedAt, &r.FinishedAt, &r.Error); err != nil {
			return nil, &errors.ConnectionError{Cause: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	return out, nil
}
