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
package enrich_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-resty/resty/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/sandeep-jaiswar/champion/internal/batch"
	"github.com/sandeep-jaiswar/champion/internal/enrich"
)

var _ = Describe("Enricher", func() {
	It("fills in isin and company_name for rows missing an isin", func() {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{
					{"symbol": "RELIANCE", "exchange": "NSE", "isin": "INE002A01018", "companyName": "Reliance Industries"},
				},
			})
		}))
		defer srv.Close()

		e := enrich.New(resty.New(), srv.URL, "test-key", enrich.NewCache(), zerolog.Nop())
		rows := []batch.Row{
			{"symbol": "RELIANCE", "exchange": "NSE", "isin": ""},
		}

		Expect(e.Enrich(context.Background(), rows)).To(Succeed())
		Expect(rows[0]["isin"]).To(Equal("INE002A01018"))
		Expect(rows[0]["company_name"]).To(Equal("Reliance Industries"))
		Expect(requests).To(Equal(1))
	})

	It("skips rows that already carry an isin", func() {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
		}))
		defer srv.Close()

		e := enrich.New(resty.New(), srv.URL, "test-key", enrich.NewCache(), zerolog.Nop())
		rows := []batch.Row{
			{"symbol": "TCS", "exchange": "NSE", "isin": "INE467B01029"},
		}

		Expect(e.Enrich(context.Background(), rows)).To(Succeed())
		Expect(requests).To(Equal(0))
	})

	It("serves a second lookup from cache without another request", func() {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{
					{"symbol": "INFY", "exchange": "NSE", "isin": "INE009A01021", "companyName": "Infosys"},
				},
			})
		}))
		defer srv.Close()

		cache := enrich.NewCache()
		e := enrich.New(resty.New(), srv.URL, "test-key", cache, zerolog.Nop())

		first := []batch.Row{{"symbol": "INFY", "exchange": "NSE", "isin": ""}}
		Expect(e.Enrich(context.Background(), first)).To(Succeed())
		Expect(requests).To(Equal(1))

		second := []batch.Row{{"symbol": "INFY", "exchange": "NSE", "isin": ""}}
		Expect(e.Enrich(context.Background(), second)).To(Succeed())
		Expect(requests).To(Equal(1))
		Expect(second[0]["isin"]).To(Equal("INE009A01021"))
	})

	It("leaves isin unresolved when the reference service errors", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		e := enrich.New(resty.New(), srv.URL, "test-key", enrich.NewCache(), zerolog.Nop())
		rows := []batch.Row{{"symbol": "WIPRO", "exchange": "NSE", "isin": ""}}

		Expect(e.Enrich(context.Background(), rows)).To(Succeed())
		Expect(rows[0]["isin"]).To(Equal(""))
	})
})
