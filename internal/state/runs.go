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

// RunStatus mirrors the flow orchestrator's run lifecycle.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// StartRun records a new flow_runs row and returns its run ID, the
// checkpoint the flow orchestrator threads through every task it schedules.
func (s *Store) StartRun(ctx context.Context, flowName string, logicalDate time.Time) (uuid.UUID, error) {
	runID := uuid.New()
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return uuid.Nil, &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO flow_runs (run_id, flow_name, logical_date, status) VALUES ($1, $2, $3, $4)`,
		runID, flowName, logicalDate, RunRunning)
	if err != nil {
		return uuid.Nil, &errors.ConnectionError{Cause: err}
	}
	return runID, nil
}

// FinishRun marks a run terminal, with runErr nil for success.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, runErr error) error {
	status := RunSuccess
	var message *string
	if runErr != nil {
		status = RunFailed
		m := runErr.Error()
		message = &m
	}

	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`UPDATE flow_runs SET status=$2, finished_at=now(), error=$3 WHERE run_id=$1`,
		runID, status, message)
	if err != nil {
		return &errors.ConnectionError{Cause: err}
	}
	return nil
}

// CheckpointTask upserts one task's status within a run, the unit the flow
// orchestrator's backfill resumes from after a process restart.
func (s *Store) CheckpointTask(ctx context.Context, runID uuid.UUID, taskName, status string, attempt int, taskErr error) error {
	var message *string
	if taskErr != nil {
		m := taskErr.Error()
		message = &m
	}

	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO task_checkpoints (run_id, task_name, status, attempt, error)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_id, task_name)
		 DO UPDATE SET status=$3, attempt=$4, error=$5, updated_at=now()`,
		runID, taskName, status, attempt, message)
	if err != nil {
		return &errors.ConnectionError{Cause: err}
	}
	return nil
}

// LastSuccessfulRun returns the logical date of the most recent successful
// run of flowName, or the zero time if none exists — used to decide where a
// backfill should resume from, mirroring teacher's Library.LastUpdated.
func (s *Store) LastSuccessfulRun(ctx context.Context, flowName string) (time.Time, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	var logicalDate time.Time
	err = conn.QueryRow(ctx,
		`SELECT coalesce(max(logical_date), '0001-01-01'::date) FROM flow_runs WHERE flow_name=$1 AND status=$2`,
		flowName, RunSuccess).Scan(&logicalDate)
	if err != nil {
		return time.Time{}, &errors.ConnectionError{Cause: err}
	}
	return logicalDate, nil
}
