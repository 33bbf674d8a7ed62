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

// Package metrics defines the Sink capability champion's task runner and
// flow orchestrator emit counters and histograms to. Non-goals (spec.md)
// exclude a metrics *backend* (no Prometheus/OTel exporter component), but
// the ambient instrumentation surface itself is still carried — LogSink
// renders it through the same zerolog pipeline as every other log line.
package metrics

import "time"

// Sink receives counters and timing observations emitted by tasks, the
// flow scheduler, and the lake/warehouse layers.
type Sink interface {
	Counter(name string, delta int64, tags map[string]string)
	Histogram(name string, value float64, tags map[string]string)
}

// Timer returns a func that, when called, records the elapsed duration
// since Timer was called as a histogram observation in milliseconds.
func Timer(sink Sink, name string, tags map[string]string) func() {
	start := time.Now()
	return func() {
		sink.Histogram(name, float64(time.Since(start).Milliseconds()), tags)
	}
}

// NopSink discards every observation; the default when no sink is wired.
type NopSink struct{}

func (NopSink) Counter(name string, delta int64, tags map[string]string)    {}
func (NopSink) Histogram(name string, value float64, tags map[string]string) {}
