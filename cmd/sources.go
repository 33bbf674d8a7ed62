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
package cmd

import (
	"fmt"
	"regexp"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/datasets"
	"github.com/sandeep-jaiswar/champion/internal/parser"
)

// source names one exchange bulletin endpoint and the parser that turns its
// downloaded bytes into a canonical batch. This is champion's replacement
// for teacher's per-subscription provider.Map lookup: instead of a
// subscription row naming a provider+dataset pair resolved at runtime,
// every dataset/exchange combination champion supports has a fixed entry
// here, registered once at startup.
type source struct {
	Exchange    string
	Dataset     string
	Host        string
	URLTemplate string // %s is replaced with logicalDate formatted per DateLayout
	DateLayout  string
	Zipped      bool
	FilePattern *regexp.Regexp // required when Zipped: the one zip entry to extract
	NewParser   func(clk clock.Clock) parser.Parser
}

func (s source) url(logicalDate time.Time) string {
	return fmt.Sprintf(s.URLTemplate, logicalDate.Format(s.DateLayout))
}

// standardSources lists every dataset/exchange combination with a uniform
// one-file-per-day fetch shape: daily bhavcopy-style bulletins, deal
// sheets, and reference/master files. Datasets whose fetch is parameterized
// per-symbol or per-series (quarterly financials, macro indicators) are not
// listed here — see cmd/specialflows.go.
var standardSources = []source{
	{
		Exchange:    "NSE",
		Dataset:     datasets.EquityOHLC,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/products/content/sec_bhavdata_full_%s.csv",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.NSEBhavcopy{Clock: clk} },
	},
	{
		Exchange:    "BSE",
		Dataset:     datasets.EquityOHLC,
		Host:        "www.bseindia.com",
		URLTemplate: "https://www.bseindia.com/download/BhavCopy/Equity/EQ%s_CSV.ZIP",
		DateLayout:  "020106",
		Zipped:      true,
		FilePattern: regexp.MustCompile(`(?i)^EQ\d{6}\.CSV$`),
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.BSEBhavcopy{Clock: clk} },
	},
	{
		Exchange:    "NSE",
		Dataset:     datasets.CorporateAction,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/content/equities/CA_%s.csv",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.CorporateActions{Clock: clk} },
	},
	{
		Exchange:    "BSE",
		Dataset:     datasets.CorporateAction,
		Host:        "www.bseindia.com",
		URLTemplate: "https://www.bseindia.com/corporates/corporate_act.aspx?dt=%s",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.CorporateActions{Clock: clk} },
	},
	{
		Exchange:    "NSE",
		Dataset:     datasets.IndexConstituent,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/content/indices/ind_close_all_%s.csv",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.IndexConstituents{Clock: clk} },
	},
	{
		Exchange:    "BSE",
		Dataset:     datasets.IndexConstituent,
		Host:        "www.bseindia.com",
		URLTemplate: "https://www.bseindia.com/indices/IndexArchiveData.aspx?dt=%s",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.IndexConstituents{Clock: clk} },
	},
	{
		Exchange:    "NSE",
		Dataset:     datasets.TradingCalendar,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/content/holiday-calendar_%s.csv",
		DateLayout:  "2006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.TradingCalendar{Clock: clk} },
	},
	{
		Exchange:    "BSE",
		Dataset:     datasets.TradingCalendar,
		Host:        "www.bseindia.com",
		URLTemplate: "https://www.bseindia.com/markets/MarketInfo/Holiday_%s.csv",
		DateLayout:  "2006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.TradingCalendar{Clock: clk} },
	},
	{
		Exchange:    "NSE",
		Dataset:     datasets.SymbolMaster,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/content/equities/EQUITY_L_%s.csv",
		DateLayout:  "20060102",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.SymbolMaster{Clock: clk} },
	},
	{
		Exchange:    "BSE",
		Dataset:     datasets.SymbolMaster,
		Host:        "www.bseindia.com",
		URLTemplate: "https://www.bseindia.com/download/Bhavcopy/Equity/SCRIP_%s.CSV",
		DateLayout:  "020106",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.SymbolMaster{Clock: clk} },
	},
	{
		Exchange:    "NSE",
		Dataset:     datasets.BulkDeal,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/content/equities/bulk_%s.csv",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.BulkDeals{Clock: clk} },
	},
	{
		Exchange:    "BSE",
		Dataset:     datasets.BulkDeal,
		Host:        "www.bseindia.com",
		URLTemplate: "https://www.bseindia.com/markets/equity/EQReports/bulk_deals.aspx?dt=%s",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.BulkDeals{Clock: clk} },
	},
	{
		Exchange:    "NSE",
		Dataset:     datasets.BlockDeal,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/content/equities/block_%s.csv",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.BlockDeals{Clock: clk} },
	},
	{
		Exchange:    "BSE",
		Dataset:     datasets.BlockDeal,
		Host:        "www.bseindia.com",
		URLTemplate: "https://www.bseindia.com/markets/equity/EQReports/block_deals.aspx?dt=%s",
		DateLayout:  "02012006",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.BlockDeals{Clock: clk} },
	},
	{
		Exchange:    "NSE",
		Dataset:     datasets.Shareholding,
		Host:        "archives.nseindia.com",
		URLTemplate: "https://archives.nseindia.com/content/shareholding/shp_%s.csv",
		DateLayout:  "20060102",
		NewParser:   func(clk clock.Clock) parser.Parser { return &parser.Shareholding{Clock: clk} },
	},
}

// sourcesForExchange filters standardSources to one exchange.
func sourcesForExchange(exchange string) []source {
	var out []source
	for _, s := range standardSources {
		if s.Exchange == exchange {
			out = append(out, s)
		}
	}
	return out
}
