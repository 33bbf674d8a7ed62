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
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/errors"
	"github.com/sandeep-jaiswar/champion/internal/metrics"
)

const (
	DefaultTaskAttempts  = 3
	DefaultTaskInitDelay = 5 * time.Second
)

// Runner executes Specs with retry on champion's retryable error kinds and
// a single outermost recover() — the only panic boundary in the codebase —
// so a bug in one dataset's parser can never take the whole flow down.
type Runner struct {
	Clock   clock.Clock
	Metrics metrics.Sink
}

func NewRunner(clk clock.Clock, sink metrics.Sink) *Runner {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Runner{Clock: clk, Metrics: sink}
}

// Run executes spec for logicalDate, retrying transient failures and
// recording the outcome as a Result rather than propagating a panic.
func (r *Runner) Run(ctx context.Context, spec Spec, logicalDate time.Time, rcTemplate RunContext) Result {
	result := Result{TaskName: spec.Name, StartedAt: r.Clock.Now()}

	var fingerprint string
	if spec.Cache != nil {
		fingerprint = Fingerprint(spec, logicalDate)
		if spec.Cache.fresh(fingerprint, r.Clock.Now()) {
			result.Status = StatusSuccess
			result.FinishedAt = r.Clock.Now()
			r.Metrics.Counter("task.cache_hit", 1, map[string]string{"task": spec.Name})
			return result
		}
	}

	stopTimer := metrics.Timer(r.Metrics, "task.duration_ms", map[string]string{"task": spec.Name})
	defer stopTimer()

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	var attempts uint = DefaultTaskAttempts
	if spec.Retries.Attempts > 0 {
		attempts = spec.Retries.Attempts
	}
	initDelay := DefaultTaskInitDelay
	if spec.Retries.InitDelay > 0 {
		initDelay = spec.Retries.InitDelay
	}

	var attempt int
	err := retry.Do(
		func() error {
			attempt++
			rc := rcTemplate
			rc.Clock = r.Clock
			rc.LogicalDate = logicalDate
			rc.Attempt = attempt
			return r.runOnce(ctx, spec, &rc)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(initDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(errors.Retryable),
		retry.LastErrorOnly(true),
	)

	result.Attempt = attempt
	result.FinishedAt = r.Clock.Now()
	result.Err = err
	if err == nil {
		result.Status = StatusSuccess
		r.Metrics.Counter("task.success", 1, map[string]string{"task": spec.Name})
		if spec.Cache != nil {
			if cerr := spec.Cache.record(fingerprint, r.Clock.Now()); cerr != nil {
				rcTemplate.Logger.Warn().Err(cerr).Str("task", spec.Name).Msg("failed to record task cache entry")
			}
		}
	} else if errors.KindOf(err) == errors.KindNotFound {
		result.Status = StatusSkipped
	} else {
		result.Status = StatusFailed
		r.Metrics.Counter("task.failed", 1, map[string]string{"task": spec.Name})
	}
	return result
}

// runOnce invokes spec.Fn once, converting a panic into a champion Error of
// KindUnknown — the one sanctioned catch-all in the codebase, per this
// package's doc comment.
func (r *Runner) runOnce(ctx context.Context, spec Spec, rc *RunContext) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New(errors.KindUnknown, fmt.Sprintf("task %s panicked: %v", spec.Name, rec), nil, nil)
		}
	}()
	return spec.Fn(ctx, rc)
}
