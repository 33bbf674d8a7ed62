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

// Package warehouse loads canonical batches into ClickHouse
// ReplacingMergeTree tables: plain inserts, never updates, relying on
// background merges to collapse replayed rows at the declared sort key.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/sandeep-jaiswar/champion/internal/errors"
)

type Client struct {
	conn driver.Conn
}

func Connect(ctx context.Context, addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, &errors.ConnectionError{Cause: err}
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// EnsureTable issues the dataset's embedded DDL against table, idempotent
// via ClickHouse's own IF NOT EXISTS.
func (c *Client) EnsureTable(ctx context.Context, ddl, table string) error {
	if err := c.conn.Exec(ctx, fmt.Sprintf(ddl, table)); err != nil {
		return &errors.SchemaMismatchError{Table: table, Details: err.Error()}
	}
	return nil
}

// CountPartition runs the verification-mode row count used by Loader after
// a load completes.
func (c *Client) CountPartition(ctx context.Context, table, partitionWhere string) (int64, error) {
	row := c.conn.QueryRow(ctx, fmt.Sprintf("SELECT count() FROM %s WHERE %s", table, partitionWhere))
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, &errors.ConnectionError{Cause: err}
	}
	return count, nil
}

// TradingCalendar reads every (date, day_type) row loaded for an exchange,
// keyed for calendar.Calendar.LoadHolidays. Returns an empty map rather than
// an error if the table doesn't exist yet (first run, before any
// trading_calendar flow has loaded data).
func (c *Client) TradingCalendar(ctx context.Context, exchange string) (map[time.Time]string, error) {
	rows, err := c.conn.Query(ctx, "SELECT date, day_type FROM trading_calendar WHERE exchange = $1 AND day_type != 'trading'", exchange)
	if err != nil {
		return map[time.Time]string{}, nil
	}
	defer rows.Close()

	out := map[time.Time]string{}
	for rows.Next() {
		var d time.Time
		var dayType string
		if err := rows.Scan(&d, &dayType); err != nil {
			return nil, &errors.ConnectionError{Cause: err}
		}
		out[d] = dayType
	}
	return out, rows.Err()
}
