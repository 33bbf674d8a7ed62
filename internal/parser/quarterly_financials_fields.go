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
package parser

// quarterlyFinancialFields is the fixed field map quarterly financials are
// cast against: every one of these element names is looked up in the parsed
// XBRL/HTML tag tree and cast to float64. A tag present in the filing but
// absent here is dropped without logging, never a hard
// SchemaError (spec's Open Question on XBRL's required-vs-optional field
// set, resolved in DESIGN.md).
var quarterlyFinancialFields = []string{
	"cost_of_revenue",
	"total_sell_gen_admin_exp",
	"research_devel_exp",
	"opex",
	"interest_exp",
	"tax_exp",
	"net_income_discontinued_operations",
	"consolidated_income",
	"net_income_nci",
	"net_income",
	"pref_dividends",
	"eps_diluted",
	"wavg_shares_outstanding",
	"wavg_shares_outstanding_diluted",
	"capx",
	"net_business_acquisitions_divestures",
	"net_invest_acquisitions_divestures",
	"free_cash_flow_per_share",
	"net_cash_flow_from_financing",
	"total_issuance_repayment_debt",
	"total_issuance_repayment_equity",
	"common_dividends",
	"net_cash_flow_from_invest",
	"net_cash_flow_from_oper",
	"effect_of_fgn_exch_rate_on_cash",
	"net_cash_flow",
	"stock_based_comp",
	"total_depreciation_amortization",
	"total_assets",
	"total_invest",
	"curr_invest",
	"non_curr_invest",
	"deferred_revenue",
	"total_deposits",
	"net_property_plant_equip",
	"inventory_sterm",
	"tax_assets",
	"total_receivables",
	"total_payables",
	"intangibles",
	"total_liabilities",
	"retained_earnings",
	"accumulated_other_comprehensive_income",
	"curr_assets",
	"non_curr_assets",
	"curr_liabilities",
	"non_curr_liabilities",
	"tax_liabilities",
	"curr_debt",
	"non_curr_debt",
	"ebt",
	"fgn_exchange_rate",
	"equity",
	"eps",
	"total_revenue",
	"net_income_common_stock",
	"cash_equiv",
	"book_value_per_share",
	"total_debt",
	"ebit",
	"ebitda",
	"shares_outstanding",
	"dividend_per_share",
	"share_factor",
	"market_cap",
	"ev",
	"invest_capital",
	"equity_avg",
	"assets_avg",
	"invested_capital_avg",
	"tangibles",
	"roe",
	"roa",
	"free_cash_flow",
	"ret_on_invested_capital",
	"gross_profit",
	"opinc",
	"gross_margin",
	"net_margin",
	"ebitda_margin",
	"return_on_sales",
	"asset_turnover",
	"payout_ratio",
	"ev_to_ebitda",
	"ev_to_ebit",
	"pe",
	"pe_alt",
	"sales_per_share",
	"price_to_sales_alt",
	"price_to_sales",
	"pb",
	"debt_to_equity",
	"dividend_yield",
	"curr_ratio",
	"working_capital",
	"tangible_book_value_per_share",
}
