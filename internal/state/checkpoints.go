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
	"github.com/jackc/pgx/v5"

	"github.com/sandeep-jaiswar/champion/internal/errors"
)

// TaskCheckpoint is one row of task_checkpoints, as seen by a resuming flow.
type TaskCheckpoint struct {
	Status  string
	Attempt int
}

// FindRun returns the most recent run_id for flowName/logicalDate along with
// its status, so a restarted orchestrator can resume an interrupted run
// instead of starting a fresh one. Returns uuid.Nil and an empty status if
// no run exists yet for that day.
func (s *Store) FindRun(ctx context.Context, flowName string, logicalDate time.Time) (uuid.UUID, RunStatus, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return uuid.Nil, "", &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	var (
		runID  uuid.UUID
		status RunStatus
	)
	err = conn.QueryRow(ctx,
		`SELECT run_id, status FROM flow_runs
		 WHERE flow_name=$1 AND logical_date=$2
		 ORDER BY started_at DESC LIMIT 1`,
		flowName, logicalDate).Scan(&runID, &status)
	if err == pgx.ErrNoRows {
		return uuid.Nil, "", nil
	}
	if err != nil {
		return uuid.Nil, "", &errors.ConnectionError{Cause: err}
	}
	return runID, status, nil
}

// LoadCheckpoints returns every task_checkpoints row recorded for runID,
// keyed by task name, the set an orchestrator resuming runID consults to
// skip tasks that already succeeded before a crash.
func (s *Store) LoadCheckpoints(ctx context.Context, runID uuid.UUID) (map[string]TaskCheckpoint, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		`SELECT task_name, status, attempt FROM task_checkpoints WHERE run_id=$1`, runID)
	if err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	defer rows.Close()

	out := make(map[string]TaskCheckpoint)
	for rows.Next() {
		var (
			name string
			cp   TaskCheckpoint
		)
		if err := rows.Scan(&name, &cp.Status, &cp.Attempt); err != nil {
			return nil, &errors.ConnectionError{Cause: err}
		}
		out[name] = cp
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	return out, nil
}
