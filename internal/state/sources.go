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
package state

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sandeep-jaiswar/champion/internal/errors"
	"github.com/sandeep-jaiswar/champion/internal/jsonutil"
)

// Source is one configured exchange/dataset ingestion source, champion's
// analogue of teacher's library.Subscription, scoped down to configuration
// and a cron schedule per spec.md's non-goals (no DI container, no
// dashboards).
type Source struct {
	ID       uuid.UUID
	Name     string
	Exchange string
	Dataset  string
	Schedule string
	Active   bool
	Config   map[string]string
}

// SaveSource inserts or updates the source identified by (exchange,
// dataset), the same "one active source per dataset per exchange" shape
// sources_exchange_dataset_idx enforces.
func (s *Store) SaveSource(ctx context.Context, src Source) (uuid.UUID, error) {
	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	cfg, err := jsonutil.Marshal(src.Config)
	if err != nil {
		return uuid.Nil, err
	}

	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return uuid.Nil, &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
INSERT INTO sources (id, name, exchange, dataset, schedule, active, config)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (exchange, dataset) DO UPDATE SET
    name = EXCLUDED.name,
    schedule = EXCLUDED.schedule,
    active = EXCLUDED.active,
    config = EXCLUDED.config`,
		src.ID, src.Name, src.Exchange, src.Dataset, src.Schedule, src.Active, cfg)
	if err != nil {
		return uuid.Nil, &errors.ConnectionError{Cause: err}
	}
	return src.ID, nil
}

// ActiveSources returns every source with active = true, the set cmd/run.go
// registers a cron trigger for in daemon mode.
func (s *Store) ActiveSources(ctx context.Context) ([]Source, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT id, name, exchange, dataset, schedule, active, config FROM sources WHERE active = true ORDER BY exchange, dataset`)
	if err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		var cfg []byte
		if err := rows.Scan(&src.ID, &src.Name, &src.Exchange, &src.Dataset, &src.Schedule, &src.Active, &cfg); err != nil {
			return nil, err
		}
		if err := jsonutil.Unmarshal(cfg, &src.Config); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// LastUpdated returns the most recent source's created_at, used by
// cmd/info.go's markdown summary. A zero time with a nil error means no
// sources have been configured yet.
func (s *Store) LastUpdated(ctx context.Context) (time.Time, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, &errors.ConnectionError{Cause: err}
	}
	defer conn.Release()

	var t *time.Time
	err = conn.QueryRow(ctx, `SELECT max(created_at) FROM sources`).Scan(&t)
	if err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, &errors.ConnectionError{Cause: err}
	}
	if t == nil {
		return time.Time{}, nil
	}
	return *t, nil
}
