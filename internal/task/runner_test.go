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
package task_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/errors"
	"github.com/sandeep-jaiswar/champion/internal/task"
)

var _ = Describe("Runner", func() {
	var (
		runner      *task.Runner
		logicalDate time.Time
	)

	BeforeEach(func() {
		runner = task.NewRunner(clock.Fixed{At: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}, nil)
		logicalDate = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	})

	It("reports success when Fn returns nil", func() {
		spec := task.Spec{
			Name: "fetch-equity-ohlc",
			Fn:   func(ctx context.Context, rc *task.RunContext) error { return nil },
		}
		result := runner.Run(context.Background(), spec, logicalDate, task.RunContext{})
		Expect(result.Status).To(Equal(task.StatusSuccess))
		Expect(result.Attempt).To(Equal(1))
	})

	It("recovers a panic inside Fn and reports it as a failed result, not a crash", func() {
		spec := task.Spec{
			Name: "parse-quarterly-financials",
			Fn: func(ctx context.Context, rc *task.RunContext) error {
				panic("unexpected nil xbrl tag")
			},
		}
		result := runner.Run(context.Background(), spec, logicalDate, task.RunContext{})
		Expect(result.Status).To(Equal(task.StatusFailed))
		Expect(result.Err).To(HaveOccurred())
		Expect(errors.KindOf(result.Err)).To(Equal(errors.KindUnknown))
	})

	It("retries a retryable error and succeeds once the upstream recovers", func() {
		var calls int64
		spec := task.Spec{
			Name: "fetch-bse-bhavcopy",
			Fn: func(ctx context.Context, rc *task.RunContext) error {
				n := atomic.AddInt64(&calls, 1)
				if n < 2 {
					return errors.Network("upstream flaked", nil)
				}
				return nil
			},
		}
		result := runner.Run(context.Background(), spec, logicalDate, task.RunContext{})
		Expect(result.Status).To(Equal(task.StatusSuccess))
		Expect(result.Attempt).To(Equal(2))
	})

	It("does not retry a non-retryable schema error", func() {
		var calls int64
		spec := task.Spec{
			Name: "validate-equity-ohlc",
			Fn: func(ctx context.Context, rc *task.RunContext) error {
				atomic.AddInt64(&calls, 1)
				return &errors.SchemaError{Missing: []string{"symbol"}}
			},
		}
		result := runner.Run(context.Background(), spec, logicalDate, task.RunContext{})
		Expect(result.Status).To(Equal(task.StatusFailed))
		Expect(atomic.LoadInt64(&calls)).To(Equal(int64(1)))
	})

	It("reports skipped for a not-found (non-trading-day) outcome", func() {
		spec := task.Spec{
			Name: "fetch-nse-bhavcopy",
			Fn: func(ctx context.Context, rc *task.RunContext) error {
				return errors.NotFound("market holiday")
			},
		}
		result := runner.Run(context.Background(), spec, logicalDate, task.RunContext{})
		Expect(result.Status).To(Equal(task.StatusSkipped))
	})
})
