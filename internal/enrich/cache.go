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
package enrich

import (
	"context"
	"fmt"

	"github.com/alphadose/haxmap"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Cache is a concurrent-safe, process-local ISIN lookup cache keyed by
// "exchange:symbol", grounded on teacher's figi/database.go's haxmap-backed
// figiMap.
type Cache struct {
	m *haxmap.Map[string, instrumentResult]
}

func NewCache() *Cache {
	return &Cache{m: haxmap.New[string, instrumentResult]()}
}

func (c *Cache) Get(key string) (instrumentResult, bool) {
	return c.m.Get(key)
}

func (c *Cache) Set(key string, result instrumentResult) {
	c.m.Set(key, result)
}

// LoadFromDB seeds the cache from the warehouse's active symbol_master
// rows, the same warm-start teacher's figi.LoadCacheFromDB performs against
// its asset table before the first enrichment pass.
func (c *Cache) LoadFromDB(ctx context.Context, pool *pgxpool.Pool, symbolMasterTable string, logger zerolog.Logger) error {
	sql := fmt.Sprintf(`SELECT symbol, exchange, isin, company_name FROM %s WHERE valid_to IS NULL AND isin != ''`, symbolMasterTable)

	rows, err := pool.Query(ctx, sql)
	if err != nil {
		logger.Error().Err(err).Str("sql", sql).Msg("loading symbol_master cache seed failed")
		return err
	}

	var seed []instrumentResult
	if err := pgxscan.ScanAll(&seed, rows); err != nil {
		logger.Error().Err(err).Msg("scanning symbol_master cache seed failed")
		return err
	}

	for _, r := range seed {
		c.Set(cacheKey(r.Exchange, r.Symbol), r)
	}
	logger.Debug().Int("entries", len(seed)).Msg("seeded instrument enrichment cache from symbol_master")
	return nil
}
