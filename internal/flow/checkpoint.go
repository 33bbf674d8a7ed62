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

	"github.com/google/uuid"

	"github.com/sandeep-jaiswar/champion/internal/state"
)

// beginRun looks for a prior flow_runs row for f/logicalDate. A run that
// already finished successfully is restarted fresh (a caller wanting to
// force a re-run should not have to delete state by hand); a run that is
// still "running" or ended "failed" is resumed under its existing run_id, so
// tasks already checkpointed success are not re-executed.
func (o *Orchestrator) beginRun(ctx context.Context, f Flow, logicalDate time.Time) (runID uuid.UUID, prior map[string]state.TaskCheckpoint, err error) {
	existing, status, ferr := o.Store.FindRun(ctx, f.Name, logicalDate)
	if ferr != nil {
		return uuid.Nil, nil, ferr
	}

	if existing != uuid.Nil && status != state.RunSuccess {
		cps, lerr := o.Store.LoadCheckpoints(ctx, existing)
		if lerr != nil {
			return uuid.Nil, nil, lerr
		}
		o.Logger.Info().Str("flow", f.Name).Str("run_id", existing.String()).
			Int("recovered_tasks", len(cps)).Msg("resuming interrupted flow run")
		return existing, cps, nil
	}

	runID, err = o.Store.StartRun(ctx, f.Name, logicalDate)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return runID, nil, nil
}
