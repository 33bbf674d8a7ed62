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
package validator

import "time"

// Named tolerances, never inlined as magic numbers, per spec.md's
// false-positive discipline.
const (
	DefaultBatchRows  = 10_000
	DefaultMaxSamples = 100

	TurnoverTolerancePct   = 0.10 // 10%: rounding between qty*price and reported turnover
	PriceJumpThresholdPct  = 0.20 // single-session move beyond this is flagged, not rejected
	DataFreshnessTolerance = 26 * time.Hour
	PostCAContinuityPct    = 0.15 // allowed residual drift after adjustment-factor correction
)
