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

var _ = Describe("resuming an interrupted flow run", func() {
	var (
		store       *fakeStore
		logicalDate time.Time
		orch        *flow.Orchestrator
	)

	BeforeEach(func() {
		store = newFakeStore()
		logicalDate = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		orch = flow.NewOrchestrator(store, clock.Fixed{At: time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)}, nil, zerolog.Nop())
	})

	It("does not re-run a task already checkpointed success before the crash", func() {
		// simulate a process that started this run, completed "fetch", and
		// then died before "load" ran.
		priorRunID, err := store.StartRun(context.Background(), "bhavcopy-nse", logicalDate)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.CheckpointTask(context.Background(), priorRunID, "fetch", "success", 1, nil)).To(Succeed())

		var fetchCalls, loadCalls int64
		f := flow.Flow{
			Name:     "bhavcopy-nse",
			Exchange: "NSE",
			Tasks: []flow.Task{
				{Spec: task.Spec{Name: "fetch", Fn: func(ctx context.Context, rc *task.RunContext) error {
					atomic.AddInt64(&fetchCalls, 1)
					return nil
				}}},
				{Spec: task.Spec{Name: "load", Fn: func(ctx context.Context, rc *task.RunContext) error {
					atomic.AddInt64(&loadCalls, 1)
					return nil
				}}, DependsOn: []string{"fetch"}},
			},
		}

		result, err := orch.Run(context.Background(), f, logicalDate)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RunID).To(Equal(priorRunID))
		Expect(atomic.LoadInt64(&fetchCalls)).To(Equal(int64(0)), "fetch already succeeded before the crash and must not re-run")
		Expect(atomic.LoadInt64(&loadCalls)).To(Equal(int64(1)))
		Expect(result.Tasks["fetch"].Outcome).To(Equal(flow.OutcomeSuccess))
		Expect(result.Tasks["load"].Outcome).To(Equal(flow.OutcomeSuccess))
		Expect(result.Err).NotTo(HaveOccurred())
	})

	It("starts a fresh run when the prior run for that logical date already succeeded", func() {
		var calls int64
		f := flow.Flow{
			Name: "bhavcopy-bse",
			Tasks: []flow.Task{
				{Spec: task.Spec{Name: "fetch", Fn: func(ctx context.Context, rc *task.RunContext) error {
					atomic.AddInt64(&calls, 1)
					return nil
				}}},
			},
		}

		first, err := orch.Run(context.Background(), f, logicalDate)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Err).NotTo(HaveOccurred())

		second, err := orch.Run(context.Background(), f, logicalDate)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.RunID).NotTo(Equal(first.RunID))
		Expect(atomic.LoadInt64(&calls)).To(Equal(int64(2)))
	})
})
