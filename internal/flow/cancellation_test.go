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

// cancellation models what a SIGINT handled via signal.NotifyContext does to
// an in-flight run: a task already executing is allowed to finish, but no
// task still waiting on a dependency is ever started.
var _ = Describe("cancelling a flow run mid-DAG", func() {
	It("marks not-yet-started downstream tasks cancelled instead of running them", func() {
		ctx, cancel := context.WithCancel(context.Background())
		var validateCalls int64

		f := flow.Flow{
			Name:     "bhavcopy-nse",
			Exchange: "NSE",
			Tasks: []flow.Task{
				{Spec: task.Spec{Name: "fetch", Fn: func(ctx context.Context, rc *task.RunContext) error {
					cancel() // simulates a shutdown signal arriving right after fetch completes
					return nil
				}}},
				{Spec: task.Spec{Name: "validate", Fn: func(ctx context.Context, rc *task.RunContext) error {
					atomic.AddInt64(&validateCalls, 1)
					return nil
				}}, DependsOn: []string{"fetch"}},
			},
		}

		store := newFakeStore()
		orch := flow.NewOrchestrator(store, clock.Fixed{At: time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)}, nil, zerolog.Nop())

		result, err := orch.Run(ctx, f, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Tasks["fetch"].Outcome).To(Equal(flow.OutcomeSuccess))
		Expect(result.Tasks["validate"].Outcome).To(Equal(flow.OutcomeCancelled))
		Expect(atomic.LoadInt64(&validateCalls)).To(Equal(int64(0)))
		Expect(result.Err).To(HaveOccurred())
	})
})
