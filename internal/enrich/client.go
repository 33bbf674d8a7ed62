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
	"net/http"

	"github.com/sandeep-jaiswar/champion/internal/errors"
)

// instrumentQuery is one symbol/exchange pair to resolve, posted in bulk to
// the instrument-master reference service.
type instrumentQuery struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

// instrumentResult is the reference service's answer for one query. The db
// tags let Cache.LoadFromDB scan it directly out of the symbol_master table
// via scany.
type instrumentResult struct {
	Symbol      string `json:"symbol" db:"symbol"`
	Exchange    string `json:"exchange" db:"exchange"`
	ISIN        string `json:"isin" db:"isin"`
	CompanyName string `json:"companyName" db:"company_name"`
}

type mappingResponse struct {
	Data []instrumentResult `json:"data"`
}

func (e *Enricher) lookup(ctx context.Context, queries []instrumentQuery) ([]instrumentResult, error) {
	var resp mappingResponse
	r, err := e.Client.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", e.APIKey).
		SetBody(queries).
		SetResult(&resp).
		Post(e.URL)
	if err != nil {
		return nil, errors.Network(fmt.Sprintf("instrument master lookup against %s", e.URL), err)
	}
	if r.StatusCode() >= http.StatusBadRequest {
		return nil, errors.Network(fmt.Sprintf("instrument master returned status %d", r.StatusCode()), nil)
	}
	return resp.Data, nil
}
