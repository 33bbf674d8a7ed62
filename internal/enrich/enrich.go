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

// Package enrich cross-references symbol_master rows missing an ISIN
// against the exchange instrument-master reference service, generalized
// from teacher's figi/openfigi.go: the same rate-limited, batched lookup
// shape, a composite-FIGI lookup there, an ISIN lookup here.
package enrich

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sandeep-jaiswar/champion/internal/batch"
)

const maxBatchSize = 100

// Enricher fills in missing ISIN/company_name fields on symbol_master rows
// by querying an exchange instrument-master reference service, consulting
// Cache first so a symbol resolved once is never looked up again.
type Enricher struct {
	Client  *resty.Client
	URL     string
	APIKey  string
	Limiter *rate.Limiter
	Cache   *Cache
	Logger  zerolog.Logger
}

func New(client *resty.Client, url, apiKey string, cache *Cache, logger zerolog.Logger) *Enricher {
	return &Enricher{
		Client:  client,
		URL:     url,
		APIKey:  apiKey,
		Limiter: rate.NewLimiter(rate.Every(time.Second/10), 10),
		Cache:   cache,
		Logger:  logger,
	}
}

// Enrich fills rows[i]["isin"] and rows[i]["company_name"] in place for
// every row whose isin column is empty, batching lookups up to
// maxBatchSize per request the way teacher batches OpenFigi queries.
func (e *Enricher) Enrich(ctx context.Context, rows []batch.Row) error {
	var pending []batch.Row
	for _, row := range rows {
		if isinOf(row) != "" {
			continue
		}
		key := cacheKey(exchangeOf(row), symbolOf(row))
		if hit, ok := e.Cache.Get(key); ok {
			row["isin"] = hit.ISIN
			row["company_name"] = hit.CompanyName
			continue
		}
		pending = append(pending, row)
	}

	for start := 0; start < len(pending); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		if err := e.enrichBatch(ctx, pending[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Enricher) enrichBatch(ctx context.Context, rows []batch.Row) error {
	if err := e.Limiter.Wait(ctx); err != nil {
		return err
	}

	queries := make([]instrumentQuery, 0, len(rows))
	for _, row := range rows {
		queries = append(queries, instrumentQuery{
			Symbol:   symbolOf(row),
			Exchange: exchangeOf(row),
		})
	}

	results, err := e.lookup(ctx, queries)
	if err != nil {
		e.Logger.Warn().Err(err).Int("rows", len(rows)).Msg("instrument master lookup failed, leaving isin unresolved")
		return nil
	}

	byKey := make(map[string]instrumentResult, len(results))
	for _, r := range results {
		byKey[cacheKey(r.Exchange, r.Symbol)] = r
	}

	for _, row := range rows {
		key := cacheKey(exchangeOf(row), symbolOf(row))
		res, ok := byKey[key]
		if !ok {
			e.Logger.Debug().Str("symbol", symbolOf(row)).Str("exchange", exchangeOf(row)).Msg("instrument master had no match")
			continue
		}
		row["isin"] = res.ISIN
		row["company_name"] = res.CompanyName
		e.Cache.Set(key, res)
	}
	return nil
}

func isinOf(row batch.Row) string {
	v, _ := row["isin"].(string)
	return v
}

func symbolOf(row batch.Row) string {
	v, _ := row["symbol"].(string)
	return v
}

func exchangeOf(row batch.Row) string {
	v, _ := row["exchange"].(string)
	return v
}

func cacheKey(exchange, symbol string) string {
	return exchange + ":" + symbol
}
