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
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/flow"
	"github.com/sandeep-jaiswar/champion/internal/task"
)

// This mirrors the end-to-end NSE equity bhavcopy scenario: fetch the day's
// bulletin, parse it, validate the parsed batch's schema, then load it into
// the warehouse, each stage depending on the one before it.
var _ = Describe("running the NSE equity bhavcopy flow end to end", func() {
	It("runs every stage in order and finishes successfully", func() {
		var order []string
		record := func(name string) func(ctx context.Context, rc *task.RunContext) error {
			return func(ctx context.Context, rc *task.RunContext) error {
				order = append(order, name)
				return nil
			}
		}

		f := flow.Flow{
			Name:     "bhavcopy-nse-equity",
			Exchange: "NSE",
			Tasks: []flow.Task{
				{Spec: task.Spec{Name: "fetch", Dataset: "equity_ohlc", Fn: record("fetch")}},
				{Spec: task.Spec{Name: "parse", Dataset: "equity_ohlc", Fn: record("parse")}, DependsOn: []string{"fetch"}},
				{Spec: task.Spec{Name: "validate", Dataset: "equity_ohlc", Fn: record("validate")}, DependsOn: []string{"parse"}},
				{Spec: task.Spec{Name: "load", Dataset: "equity_ohlc", Fn: record("load")}, DependsOn: []string{"validate"}},
			},
		}

		store := newFakeStore()
		logicalDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		orch := flow.NewOrchestrator(store, clock.Fixed{At: time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)}, nil, zerolog.Nop())

		result, err := orch.Run(context.Background(), f, logicalDate)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"fetch", "parse", "validate", "load"}))

		for _, name := range []string{"fetch", "parse", "validate", "load"} {
			Expect(result.Tasks[name].Outcome).To(Equal(flow.OutcomeSuccess))
		}

		checkpoints, err := store.LoadCheckpoints(context.Background(), result.RunID)
		Expect(err).NotTo(HaveOccurred())
		Expect(checkpoints).To(HaveLen(4))
	})

	It("stops downstream tasks when validate reports a schema error, and does not load", func() {
		var loadCalls int64
		f := flow.Flow{
			Name:     "bhavcopy-nse-equity",
			Exchange: "NSE",
			Tasks: []flow.Task{
				{Spec: task.Spec{Name: "fetch", Fn: func(ctx context.Context, rc *task.RunContext) error { return nil }}},
				{Spec: task.Spec{Name: "parse", Fn: func(ctx context.Context, rc *task.RunContext) error { return nil }}, DependsOn: []string{"fetch"}},
				{Spec: task.Spec{Name: "validate", Fn: func(ctx context.Context, rc *task.RunContext) error {
					return &champErr{}
				}}, DependsOn: []string{"parse"}},
				{Spec: task.Spec{Name: "load", Fn: func(ctx context.Context, rc *task.RunContext) error {
					atomic.AddInt64(&loadCalls, 1)
					return nil
				}}, DependsOn: []string{"validate"}},
			},
		}

		store := newFakeStore()
		orch := flow.NewOrchestrator(store, clock.Fixed{At: time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)}, nil, zerolog.Nop())

		result, err := orch.Run(context.Background(), f, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Tasks["validate"].Outcome).To(Equal(flow.OutcomeFailed))
		Expect(result.Tasks["load"].Outcome).To(Equal(flow.OutcomeUpstreamFailed))
		Expect(atomic.LoadInt64(&loadCalls)).To(Equal(int64(0)))
		Expect(result.Err).To(HaveOccurred())
	})
})

// champErr is a minimal non-retryable error standing in for a real
// *errors.SchemaError, kept local to avoid importing internal/errors just
// for one negative-path test.
type champErr struct{}

func (e *champErr) Error() string { return "schema drift: missing column" }
