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
package reporter_test

import (
	"context"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/state"
)

// fakeRunStore is an in-memory reporter.RunStore, the same forward-looking
// mock pattern internal/flow's fakeStore uses for flow.Store.
type fakeRunStore struct {
	runs []state.FlowRunSummary
}

func (f *fakeRunStore) RunsForDate(ctx context.Context, logicalDate time.Time) ([]state.FlowRunSummary, error) {
	var out []state.FlowRunSummary
	for _, r := range f.runs {
		if sameUTCDay(r.LogicalDate, logicalDate) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRunStore) RunsSince(ctx context.Context, since time.Time) ([]state.FlowRunSummary, error) {
	var out []state.FlowRunSummary
	for _, r := range f.runs {
		if !r.LogicalDate.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
