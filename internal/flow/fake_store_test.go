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
package flow_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeep-jaiswar/champion/internal/state"
)

// fakeStore is an in-memory flow.Store used by every test in this package,
// standing in for a real pgx-backed *state.Store the way internal/warehouse's
// fakeConn stands in for a real ClickHouse driver.Conn.
type fakeStore struct {
	mu          sync.Mutex
	runs        map[uuid.UUID]fakeRun
	byFlowDate  map[string]uuid.UUID
	checkpoints map[uuid.UUID]map[string]state.TaskCheckpoint
	lastSuccess map[string]time.Time
}

type fakeRun struct {
	flowName    string
	logicalDate time.Time
	status      state.RunStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		runs:        make(map[uuid.UUID]fakeRun),
		byFlowDate:  make(map[string]uuid.UUID),
		checkpoints: make(map[uuid.UUID]map[string]state.TaskCheckpoint),
		lastSuccess: make(map[string]time.Time),
	}
}

func dateKey(flowName string, logicalDate time.Time) string {
	return flowName + "|" + logicalDate.Format("2006-01-02")
}

func (s *fakeStore) StartRun(ctx context.Context, flowName string, logicalDate time.Time) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runID := uuid.New()
	s.runs[runID] = fakeRun{flowName: flowName, logicalDate: logicalDate, status: state.RunRunning}
	s.byFlowDate[dateKey(flowName, logicalDate)] = runID
	s.checkpoints[runID] = make(map[string]state.TaskCheckpoint)
	return runID, nil
}

func (s *fakeStore) FinishRun(ctx context.Context, runID uuid.UUID, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.runs[runID]
	if runErr != nil {
		run.status = state.RunFailed
	} else {
		run.status = state.RunSuccess
		s.lastSuccess[run.flowName] = laterDate(s.lastSuccess[run.flowName], run.logicalDate)
	}
	s.runs[runID] = run
	return nil
}

func laterDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func (s *fakeStore) CheckpointTask(ctx context.Context, runID uuid.UUID, taskName, status string, attempt int, taskErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[runID][taskName] = state.TaskCheckpoint{Status: status, Attempt: attempt}
	return nil
}

func (s *fakeStore) FindRun(ctx context.Context, flowName string, logicalDate time.Time) (uuid.UUID, state.RunStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runID, ok := s.byFlowDate[dateKey(flowName, logicalDate)]
	if !ok {
		return uuid.Nil, "", nil
	}
	return runID, s.runs[runID].status, nil
}

func (s *fakeStore) LoadCheckpoints(ctx context.Context, runID uuid.UUID) (map[string]state.TaskCheckpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]state.TaskCheckpoint, len(s.checkpoints[runID]))
	for k, v := range s.checkpoints[runID] {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) LastSuccessfulRun(ctx context.Context, flowName string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSuccess[flowName], nil
}
