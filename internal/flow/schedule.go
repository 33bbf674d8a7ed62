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

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs Flows at the cron expressions stored on each subscription's
// Schedule field (teacher's library.Subscription.Schedule, never consumed —
// cmd/run.go's daemon mode was a bare "// TODO"). Expressions are always
// interpreted in IST (NSE/BSE's own trading-hours timezone), not the host's
// local time or UTC, so "30 18 * * 1-5" means 6:30pm in Mumbai regardless of
// where champion is deployed.
type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	logger zerolog.Logger
}

// NewScheduler constructs a Scheduler anchored to Asia/Kolkata.
func NewScheduler(logger zerolog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return nil, err
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Scheduler{cron: c, loc: loc, logger: logger}, nil
}

// AddFlow schedules f to run at expr (standard five-field cron syntax,
// interpreted in IST), resolving logicalDate as "today" in IST at trigger
// time. runFn is invoked with the orchestrator-resolved logical date; the
// caller supplies it so Scheduler stays independent of any one Orchestrator.
func (s *Scheduler) AddFlow(expr string, runFn func(ctx context.Context, logicalDate time.Time)) (cron.EntryID, error) {
	return s.cron.AddFunc(expr, func() {
		now := time.Now().In(s.loc)
		logicalDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		runFn(context.Background(), logicalDate)
	})
}

// Start begins dispatching scheduled flows in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for any in-flight dispatch to return,
// mirroring the graceful-shutdown contract a signal.NotifyContext caller
// expects.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
