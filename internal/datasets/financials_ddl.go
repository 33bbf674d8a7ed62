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
package datasets

// quarterlyFinancialDDL carries the full financial-statement vocabulary
// (cost/revenue, balance sheet, cash flow, and derived ratio fields) as the
// required core set for the quarterly financials dataset.
const quarterlyFinancialDDL = `CREATE TABLE IF NOT EXISTS %s (
	symbol          LowCardinality(String),
	instrument_id   String,
	year            UInt16,
	quarter         UInt8,
	report_period   Date,
	calendar_date   Date,
	cost_of_revenue Float64,
	total_sell_gen_admin_exp Float64,
	research_devel_exp Float64,
	opex Float64,
	interest_exp Float64,
	tax_exp Float64,
	net_income_discontinued_operations Float64,
	consolidated_income Float64,
	net_income_nci Float64,
	net_income Float64,
	pref_dividends Float64,
	eps_diluted Float64,
	wavg_shares_outstanding Float64,
	wavg_shares_outstanding_diluted Float64,
	capx Float64,
	net_business_acquisitions_divestures Float64,
	net_invest_acquisitions_divestures Float64,
	free_cash_flow_per_share Float64,
	net_cash_flow_from_financing Float64,
	total_issuance_repayment_debt Float64,
	total_issuance_repayment_equity Float64,
	common_dividends Float64,
	net_cash_flow_from_invest Float64,
	net_cash_flow_from_oper Float64,
	effect_of_fgn_exch_rate_on_cash Float64,
	net_cash_flow Float64,
	stock_based_comp Float64,
	total_depreciation_amortization Float64,
	total_assets Float64,
	total_invest Float64,
	curr_invest Float64,
	non_curr_invest Float64,
	deferred_revenue Float64,
	total_deposits Float64,
	net_property_plant_equip Float64,
	inventory_sterm Float64,
	tax_assets Float64,
	total_receivables Float64,
	total_payables Float64,
	intangibles Float64,
	total_liabilities Float64,
	retained_earnings Float64,
	accumulated_other_comprehensive_income Float64,
	curr_assets Float64,
	non_curr_assets Float64,
	curr_liabilities Float64,
	non_curr_liabilities Float64,
	tax_liabilities Float64,
	curr_debt Float64,
	non_curr_debt Float64,
	ebt Float64,
	fgn_exchange_rate Float64,
	equity Float64,
	eps Float64,
	total_revenue Float64,
	net_income_common_stock Float64,
	cash_equiv Float64,
	book_value_per_share Float64,
	total_debt Float64,
	ebit Float64,
	ebitda Float64,
	shares_outstanding Float64,
	dividend_per_share Float64,
	share_factor Float64,
	market_cap Float64,
	ev Float64,
	invest_capital Float64,
	equity_avg Float64,
	assets_avg Float64,
	invested_capital_avg Float64,
	tangibles Float64,
	roe Float64,
	roa Float64,
	free_cash_flow Float64,
	ret_on_invested_capital Float64,
	gross_profit Float64,
	opinc Float64,
	gross_margin Float64,
	net_margin Float64,
	ebitda_margin Float64,
	return_on_sales Float64,
	asset_turnover Float64,
	payout_ratio Float64,
	ev_to_ebitda Float64,
	ev_to_ebit Float64,
	pe Float64,
	pe_alt Float64,
	sales_per_share Float64,
	price_to_sales_alt Float64,
	price_to_sales Float64,
	pb Float64,
	debt_to_equity Float64,
	dividend_yield Float64,
	curr_ratio Float64,
	working_capital Float64,
	tangible_book_value_per_share Float64,
	source          LowCardinality(String),
	event_time      DateTime64(3, 'UTC'),
	ingest_time     DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(ingest_time)
PARTITION BY (year, quarter)
ORDER BY (symbol, year, quarter, instrument_id)`
