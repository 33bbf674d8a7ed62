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

// Package flow is champion's orchestrator: it sequences the fetch, parse,
// validate, and load tasks of a bhavcopy (or any other dataset) pipeline as
// a DAG, runs independent tasks concurrently through a bounded Pool, and
// checkpoints every task outcome to internal/state so a crashed run resumes
// instead of re-fetching and re-loading everything for the day.
//
// This generalizes teacher's cmd/run.go, which ran one subscription after
// another with no dependency graph and no checkpointing (daemon mode was a
// bare "// TODO"); champion's flows are always scheduled, never ad hoc.
package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/errors"
	"github.com/sandeep-jaiswar/champion/internal/metrics"
	"github.com/sandeep-jaiswar/champion/internal/state"
	"github.com/sandeep-jaiswar/champion/internal/task"
)

// Outcome is a task's terminal status within a flow run. It extends
// task.Status with upstream_failed and cancelled, which only make sense at
// the DAG level.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeFailed         Outcome = "failed"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeUpstreamFailed Outcome = "upstream_failed"
	OutcomeCancelled      Outcome = "cancelled"
)

// Task is one node of a Flow's DAG: a unit of work plus the names of the
// Tasks within the same Flow it depends on.
type Task struct {
	Spec      task.Spec
	DependsOn []string
}

// Flow is a named DAG of Tasks run once per logical date.
type Flow struct {
	Name        string
	Exchange    string
	Tasks       []Task
	Concurrency int // 0 means unbounded within a round
}

// TaskResult is one Task's outcome within a Run.
type TaskResult struct {
	Outcome  Outcome
	Attempt  int
	Err      error
	Duration time.Duration
}

// RunResult is a whole Flow's outcome for one logical date.
type RunResult struct {
	RunID       uuid.UUID
	FlowName    string
	LogicalDate time.Time
	Tasks       map[string]TaskResult
	Err         error // aggregated via multierror; nil if every task succeeded or was (upstream-)skipped
}

// Store is the subset of *state.Store the orchestrator needs to checkpoint
// runs and tasks. Defined here (rather than depending on *state.Store
// directly) so tests can supply an in-memory fake without a live database.
type Store interface {
	StartRun(ctx context.Context, flowName string, logicalDate time.Time) (uuid.UUID, error)
	FinishRun(ctx context.Context, runID uuid.UUID, runErr error) error
	CheckpointTask(ctx context.Context, runID uuid.UUID, taskName, status string, attempt int, taskErr error) error
	FindRun(ctx context.Context, flowName string, logicalDate time.Time) (uuid.UUID, state.RunStatus, error)
	LoadCheckpoints(ctx context.Context, runID uuid.UUID) (map[string]state.TaskCheckpoint, error)
	LastSuccessfulRun(ctx context.Context, flowName string) (time.Time, error)
}

// Orchestrator runs Flows against a Store for checkpointing and a
// task.Runner for per-task retry/panic handling.
type Orchestrator struct {
	Store  Store
	Runner *task.Runner
	Clock  clock.Clock
	Logger zerolog.Logger
}

// NewOrchestrator wires an Orchestrator with sane defaults.
func NewOrchestrator(store Store, clk clock.Clock, sink metrics.Sink, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		Store:  store,
		Runner: task.NewRunner(clk, sink),
		Clock:  clk,
		Logger: logger,
	}
}

// Run executes f for logicalDate, resuming a prior interrupted run if one is
// found via the Store (see checkpoint.go), and returns once every task has
// reached a terminal Outcome or the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context, f Flow, logicalDate time.Time) (*RunResult, error) {
	if err := validateDAG(f); err != nil {
		return nil, err
	}

	runID, prior, err := o.beginRun(ctx, f, logicalDate)
	if err != nil {
		return nil, err
	}

	result := &RunResult{RunID: runID, FlowName: f.Name, LogicalDate: logicalDate, Tasks: make(map[string]TaskResult)}
	for name, cp := range prior {
		if cp.Status == string(OutcomeSuccess) {
			result.Tasks[name] = TaskResult{Outcome: OutcomeSuccess, Attempt: cp.Attempt}
		}
	}

	pool := NewPool(f.Concurrency)
	pending := make(map[string]Task, len(f.Tasks))
	for _, t := range f.Tasks {
		if _, done := result.Tasks[t.Name()]; !done {
			pending[t.Name()] = t
		}
	}

	for len(pending) > 0 {
		if ctx.Err() != nil {
			for name := range pending {
				result.Tasks[name] = TaskResult{Outcome: OutcomeCancelled, Err: errors.Cancelled("flow run cancelled")}
			}
			break
		}

		ready := readyTasks(pending, result.Tasks)
		if len(ready) == 0 {
			// every remaining task has at least one non-success dependency;
			// they can never become ready, so mark them upstream_failed.
			for name, t := range pending {
				result.Tasks[name] = o.markUpstreamFailed(ctx, runID, t)
				delete(pending, name)
			}
			break
		}

		outcomes := make([]TaskResult, len(ready))
		var jobs []func()
		for i, t := range ready {
			i, t := i, t
			jobs = append(jobs, func() {
				outcomes[i] = o.runTask(ctx, runID, f, t, logicalDate)
			})
		}
		pool.Run(jobs)

		// merge sequentially: result.Tasks is read by readyTasks on the next
		// round and must never be written concurrently by the pool above.
		for i, t := range ready {
			result.Tasks[t.Name()] = outcomes[i]
			delete(pending, t.Name())
		}
	}

	runErr := aggregateErr(result)
	if err := o.Store.FinishRun(ctx, runID, runErr); err != nil {
		o.Logger.Error().Err(err).Str("run_id", runID.String()).Msg("failed to finalize flow run")
	}
	result.Err = runErr
	return result, nil
}

func (t Task) Name() string { return t.Spec.Name }

func validateDAG(f Flow) error {
	names := make(map[string]bool, len(f.Tasks))
	for _, t := range f.Tasks {
		if names[t.Name()] {
			return errors.New(errors.KindValidation, fmt.Sprintf("duplicate task name %q in flow %q", t.Name(), f.Name), nil, nil)
		}
		names[t.Name()] = true
	}
	for _, t := range f.Tasks {
		for _, dep := range t.DependsOn {
			if !names[dep] {
				return errors.New(errors.KindValidation, fmt.Sprintf("task %q depends on unknown task %q", t.Name(), dep), nil, nil)
			}
		}
	}
	return nil
}

// readyTasks returns every still-pending task whose dependencies have all
// reached OutcomeSuccess.
func readyTasks(pending map[string]Task, done map[string]TaskResult) []Task {
	var ready []Task
	for _, t := range pending {
		allDone := true
		for _, dep := range t.DependsOn {
			if done[dep].Outcome != OutcomeSuccess {
				allDone = false
				break
			}
		}
		if allDone {
			ready = append(ready, t)
		}
	}
	return ready
}

func (o *Orchestrator) runTask(ctx context.Context, runID uuid.UUID, f Flow, t Task, logicalDate time.Time) TaskResult {
	spec := t.Spec
	if spec.Exchange == "" {
		spec.Exchange = f.Exchange
	}
	logger := o.Logger.With().Str("flow", f.Name).Str("task", spec.Name).Str("run_id", runID.String()).Logger()

	r := o.Runner.Run(ctx, spec, logicalDate, task.RunContext{Logger: logger})
	outcome := taskOutcome(r.Status)

	if err := o.Store.CheckpointTask(ctx, runID, t.Name(), string(outcome), r.Attempt, r.Err); err != nil {
		logger.Error().Err(err).Msg("failed to checkpoint task outcome")
	}
	return TaskResult{Outcome: outcome, Attempt: r.Attempt, Err: r.Err, Duration: r.Duration()}
}

func taskOutcome(s task.Status) Outcome {
	switch s {
	case task.StatusSuccess:
		return OutcomeSuccess
	case task.StatusSkipped:
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

func (o *Orchestrator) markUpstreamFailed(ctx context.Context, runID uuid.UUID, t Task) TaskResult {
	err := errors.New(errors.KindUnknown, fmt.Sprintf("task %q not run: a dependency did not succeed", t.Name()), nil, nil)
	if cerr := o.Store.CheckpointTask(ctx, runID, t.Name(), string(OutcomeUpstreamFailed), 0, err); cerr != nil {
		o.Logger.Error().Err(cerr).Str("task", t.Name()).Msg("failed to checkpoint upstream_failed task")
	}
	return TaskResult{Outcome: OutcomeUpstreamFailed, Err: err}
}

// aggregateErr collects every failed/cancelled task's error into one
// *multierror.Error; a run with only successes, skips, and upstream-failed
// placeholders (themselves caused by an already-reported failure) returns nil.
func aggregateErr(result *RunResult) error {
	var merr *multierror.Error
	for name, r := range result.Tasks {
		if r.Outcome == OutcomeFailed || r.Outcome == OutcomeCancelled {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", name, r.Err))
		}
	}
	return merr.ErrorOrNil()
}
