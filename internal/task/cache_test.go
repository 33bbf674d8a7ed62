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
	"github.com/sandeep-jaiswar/champion/internal/task"
)

var _ = Describe("task caching", func() {
	It("skips re-running a fetch-shaped task within its cache TTL", func() {
		clk := clock.Fixed{At: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
		runner := task.NewRunner(clk, nil)
		logicalDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

		var calls int64
		spec := task.Spec{
			Name:     "fetch-nse-bhavcopy",
			Exchange: "NSE",
			Dataset:  "equity_ohlc",
			Cache:    &task.CachePolicy{Dir: GinkgoT().TempDir(), TTL: task.DefaultCacheTTL},
			Fn: func(ctx context.Context, rc *task.RunContext) error {
				atomic.AddInt64(&calls, 1)
				return nil
			},
		}

		first := runner.Run(context.Background(), spec, logicalDate, task.RunContext{})
		Expect(first.Status).To(Equal(task.StatusSuccess))
		Expect(atomic.LoadInt64(&calls)).To(Equal(int64(1)))

		second := runner.Run(context.Background(), spec, logicalDate, task.RunContext{})
		Expect(second.Status).To(Equal(task.StatusSuccess))
		Expect(atomic.LoadInt64(&calls)).To(Equal(int64(1)), "cache hit must not invoke Fn again")
	})

	It("re-runs once the cache entry is older than its TTL", func() {
		logicalDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		cachePolicy := &task.CachePolicy{Dir: GinkgoT().TempDir(), TTL: time.Hour}

		var calls int64
		spec := task.Spec{
			Name:     "fetch-nse-bhavcopy",
			Exchange: "NSE",
			Dataset:  "equity_ohlc",
			Cache:    cachePolicy,
			Fn: func(ctx context.Context, rc *task.RunContext) error {
				atomic.AddInt64(&calls, 1)
				return nil
			},
		}

		firstRunner := task.NewRunner(clock.Fixed{At: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}, nil)
		firstRunner.Run(context.Background(), spec, logicalDate, task.RunContext{})

		secondRunner := task.NewRunner(clock.Fixed{At: time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)}, nil)
		secondRunner.Run(context.Background(), spec, logicalDate, task.RunContext{})

		Expect(atomic.LoadInt64(&calls)).To(Equal(int64(2)), "the two runs are 2h apart, past the 1h TTL")
	})
})
