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
package metrics

import "github.com/rs/zerolog"

// LogSink renders every observation as a structured zerolog event,
// grounded on teacher's convention of a package-level zerolog.Logger rather
// than a dedicated metrics exporter.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Counter(name string, delta int64, tags map[string]string) {
	ev := s.Logger.Info().Str("metric", name).Int64("delta", delta)
	for k, v := range tags {
		ev = ev.Str(k, v)
	}
	ev.Msg("counter")
}

func (s LogSink) Histogram(name string, value float64, tags map[string]string) {
	ev := s.Logger.Info().Str("metric", name).Float64("value", value)
	for k, v := range tags {
		ev = ev.Str(k, v)
	}
	ev.Msg("histogram")
}
