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

// Package datasets is champion's Go-native analogue of the teacher's
// data.DataTypes map: one Definition per dataset family naming its identity
// (dedup) key, lake partition keys, required columns, and warehouse DDL.
package datasets

const (
	EquityOHLC         = "equity_ohlc"
	CorporateAction    = "corporate_action"
	IndexConstituent   = "index_constituent"
	TradingCalendar    = "trading_calendar"
	SymbolMaster       = "symbol_master"
	BulkDeal           = "bulk_deal"
	BlockDeal          = "block_deal"
	QuarterlyFinancial = "quarterly_financial"
	Shareholding       = "shareholding"
	MacroIndicator     = "macro_indicator"
)

// Definition describes one dataset family end to end.
type Definition struct {
	Name string

	// RequiredColumns must be present after parsing or the parser raises a
	// SchemaError; columns not in this list may still appear (dropped) or be
	// absent (treated as optional/nullable).
	RequiredColumns []string

	// DedupKey is the identity tuple collapsing duplicate rows within the
	// normalized layer, keeping the row with the greatest ingest_time.
	DedupKey []string

	// LakePartitions are the Hive-style partition column names, in order.
	LakePartitions []string

	// WarehouseDDL is the ClickHouse table definition (ReplacingMergeTree
	// keyed by ingest_time), with %s substituted for the table name.
	WarehouseDDL string

	// SortKey is the warehouse ORDER BY clause: the dedup key, plus
	// instrument_id for every dataset that carries that column.
	// index_constituent, trading_calendar and macro_indicator have no
	// instrument_id column and sort on the dedup key alone.
	SortKey []string
}

// Registry maps dataset name to its Definition, mirroring teacher's
// data.DataTypes global map.
var Registry = map[string]*Definition{
	EquityOHLC: {
		Name:            EquityOHLC,
		RequiredColumns: []string{"symbol", "instrument_id", "trade_date", "open", "high", "low", "close", "volume"},
		DedupKey:        []string{"symbol", "instrument_id", "trade_date"},
		LakePartitions:  []string{"year", "month", "day"},
		SortKey:         []string{"symbol", "trade_date", "instrument_id"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	symbol          LowCardinality(String),
	instrument_id   String,
	trade_date      Date,
	open            Float64,
	high            Float64,
	low             Float64,
	close           Float64,
	volume          Int64,
	adjustment_factor Float64 DEFAULT 1.0,
	source          LowCardinality(String),
	event_time      DateTime64(3, 'UTC'),
	ingest_time     DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYYYYMM(trade_date)
ORDER BY (symbol, trade_date, instrument_id)`,
	},

	CorporateAction: {
		Name:            CorporateAction,
		RequiredColumns: []string{"symbol", "ex_date", "ca_id", "adjustment_factor"},
		DedupKey:        []string{"symbol", "ex_date", "ca_id"},
		LakePartitions:  []string{"year"},
		SortKey:         []string{"symbol", "ex_date", "ca_id", "instrument_id"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	symbol             LowCardinality(String),
	instrument_id      String,
	ex_date            Date,
	ca_id              String,
	action_type        LowCardinality(String),
	adjustment_factor  Float64,
	source             LowCardinality(String),
	event_time         DateTime64(3, 'UTC'),
	ingest_time        DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYear(ex_date)
ORDER BY (symbol, ex_date, ca_id, instrument_id)`,
	},

	IndexConstituent: {
		Name:            IndexConstituent,
		RequiredColumns: []string{"index_name", "symbol", "effective_date", "action"},
		DedupKey:        []string{"index_name", "symbol", "effective_date"},
		LakePartitions:  []string{"year"},
		SortKey:         []string{"index_name", "symbol", "effective_date"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	index_name      LowCardinality(String),
	symbol          LowCardinality(String),
	effective_date  Date,
	action          LowCardinality(String),
	source          LowCardinality(String),
	event_time      DateTime64(3, 'UTC'),
	ingest_time     DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYear(effective_date)
ORDER BY (index_name, symbol, effective_date)`,
	},

	TradingCalendar: {
		Name:            TradingCalendar,
		RequiredColumns: []string{"exchange", "date", "day_type"},
		DedupKey:        []string{"exchange", "date"},
		LakePartitions:  []string{"year"},
		SortKey:         []string{"exchange", "date"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	exchange     LowCardinality(String),
	date         Date,
	day_type     LowCardinality(String),
	source       LowCardinality(String),
	event_time   DateTime64(3, 'UTC'),
	ingest_time  DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYear(date)
ORDER BY (exchange, date)`,
	},

	SymbolMaster: {
		Name:            SymbolMaster,
		RequiredColumns: []string{"symbol", "exchange", "valid_from"},
		DedupKey:        []string{"symbol", "exchange", "valid_from"},
		LakePartitions:  []string{"year"},
		SortKey:         []string{"symbol", "exchange", "valid_from", "instrument_id"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	symbol          LowCardinality(String),
	instrument_id   String,
	exchange        LowCardinality(String),
	isin            String,
	company_name    String,
	valid_from      Date,
	valid_to        Nullable(Date),
	source          LowCardinality(String),
	event_time      DateTime64(3, 'UTC'),
	ingest_time     DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYear(valid_from)
ORDER BY (symbol, exchange, valid_from, instrument_id)`,
	},

	BulkDeal: {
		Name:            BulkDeal,
		RequiredColumns: []string{"symbol", "deal_date", "client_name", "quantity", "price"},
		DedupKey:        []string{"symbol", "deal_date", "client_name", "instrument_id"},
		LakePartitions:  []string{"year", "month"},
		SortKey:         []string{"symbol", "deal_date", "client_name", "instrument_id"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	symbol        LowCardinality(String),
	instrument_id String,
	deal_date     Date,
	client_name   String,
	deal_type     LowCardinality(String),
	quantity      Int64,
	price         Float64,
	source        LowCardinality(String),
	event_time    DateTime64(3, 'UTC'),
	ingest_time   DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYYYYMM(deal_date)
ORDER BY (symbol, deal_date, client_name, instrument_id)`,
	},

	BlockDeal: {
		Name:            BlockDeal,
		RequiredColumns: []string{"symbol", "deal_date", "client_name", "quantity", "price"},
		DedupKey:        []string{"symbol", "deal_date", "client_name", "instrument_id"},
		LakePartitions:  []string{"year", "month"},
		SortKey:         []string{"symbol", "deal_date", "client_name", "instrument_id"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	symbol        LowCardinality(String),
	instrument_id String,
	deal_date     Date,
	client_name   String,
	quantity      Int64,
	price         Float64,
	source        LowCardinality(String),
	event_time    DateTime64(3, 'UTC'),
	ingest_time   DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYYYYMM(deal_date)
ORDER BY (symbol, deal_date, client_name, instrument_id)`,
	},

	QuarterlyFinancial: {
		Name:            QuarterlyFinancial,
		RequiredColumns: []string{"symbol", "year", "quarter"},
		DedupKey:        []string{"symbol", "year", "quarter"},
		LakePartitions:  []string{"year", "quarter"},
		SortKey:         []string{"symbol", "year", "quarter", "instrument_id"},
		WarehouseDDL:    quarterlyFinancialDDL,
	},

	Shareholding: {
		Name:            Shareholding,
		RequiredColumns: []string{"symbol", "as_of_date", "category"},
		DedupKey:        []string{"symbol", "as_of_date", "category"},
		LakePartitions:  []string{"year", "quarter"},
		SortKey:         []string{"symbol", "as_of_date", "category", "instrument_id"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	symbol        LowCardinality(String),
	instrument_id String,
	as_of_date    Date,
	category      LowCardinality(String),
	percent_held  Float64,
	source        LowCardinality(String),
	event_time    DateTime64(3, 'UTC'),
	ingest_time   DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYear(as_of_date)
ORDER BY (symbol, as_of_date, category, instrument_id)`,
	},

	MacroIndicator: {
		Name:            MacroIndicator,
		RequiredColumns: []string{"series_id", "observation_date", "value"},
		DedupKey:        []string{"series_id", "observation_date"},
		LakePartitions:  []string{"year"},
		SortKey:         []string{"series_id", "observation_date"},
		WarehouseDDL: `CREATE TABLE IF NOT EXISTS %s (
	series_id        LowCardinality(String),
	observation_date Date,
	value            Float64,
	source           LowCardinality(String),
	event_time       DateTime64(3, 'UTC'),
	ingest_time      DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY toYear(observation_date)
ORDER BY (series_id, observation_date)`,
	},
}

// Get looks up a dataset definition by name.
func Get(name string) (*Definition, bool) {
	d, ok := Registry[name]
	return d, ok
}
