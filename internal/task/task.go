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

// Package task is champion's unit of work: one Spec (fetch, parse,
// validate, write, or load a single dataset/exchange/logical-date triple),
// run through Runner, which is the only place in the codebase allowed to
// recover from a panic (spec §7's "no task takes the whole process down").
package task

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/metrics"
)

// RetryPolicy configures Runner.Run's retry.Do call for one Spec. The zero
// value means "use the runner's defaults" (DefaultTaskAttempts /
// DefaultTaskInitDelay), so existing Specs that don't set Retries keep
// behaving exactly as before.
type RetryPolicy struct {
	Attempts  uint          // 0 means DefaultTaskAttempts
	InitDelay time.Duration // 0 means DefaultTaskInitDelay
}

// Spec is one schedulable unit of work.
type Spec struct {
	Name     string
	Exchange string
	Dataset  string
	Cache    *CachePolicy // nil disables caching; never set on write-shaped tasks
	Retries  RetryPolicy  // zero value falls back to the runner's defaults
	Timeout  time.Duration // 0 means no per-task deadline beyond ctx's own
	Fn       func(ctx context.Context, rc *RunContext) error
}

// RunContext is threaded into every task invocation, mirroring teacher's
// per-subscription fetchLogger-in-context idiom (provider.Fetch receives a
// context already carrying a zerolog.Logger via log.With().WithContext).
type RunContext struct {
	Clock       clock.Clock
	Logger      zerolog.Logger
	Metrics     metrics.Sink
	LogicalDate time.Time
	Attempt     int
}

// Status is a task's terminal outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped" // e.g. fetcher found no data for a non-trading day
)

// Result is what Runner.Run returns for one Spec invocation.
type Result struct {
	TaskName  string
	Status    Status
	Attempt   int
	Err       error
	StartedAt time.Time
	FinishedAt time.Time
}

func (r Result) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
