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
package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-resty/resty/v2"

	"github.com/sandeep-jaiswar/champion/internal/calendar"
	"github.com/sandeep-jaiswar/champion/internal/circuitbreaker"
	"github.com/sandeep-jaiswar/champion/internal/fetcher"
)

var _ = Describe("Fetcher against a flapping upstream", func() {
	It("recovers via retry once the server stops failing", func() {
		var requestCount int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := atomic.AddInt64(&requestCount, 1)
			if n < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("SYMBOL,OPEN,CLOSE\nTCS,100,105\n"))
		}))
		defer srv.Close()

		f := fetcher.New(resty.New(), circuitbreaker.NewRegistry(0, 0))
		f.RateLimit(srv.Listener.Addr().String(), 6000)

		src := fetcher.Source{Exchange: "NSE", Host: srv.Listener.Addr().String(), URL: srv.URL}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		body, err := f.FetchWithRetry(ctx, src, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring("TCS"))
		Expect(atomic.LoadInt64(&requestCount)).To(BeNumerically(">=", int64(3)))
	})

	It("treats a 404 on a known holiday as no data, not an error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := fetcher.New(resty.New(), circuitbreaker.NewRegistry(0, 0))
		republicDay := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
		cal := calendar.New("NSE")
		cal.LoadHolidays(map[time.Time]string{republicDay: "Republic Day"})
		f.Calendars["NSE"] = cal

		src := fetcher.Source{Exchange: "NSE", Host: srv.Listener.Addr().String(), URL: srv.URL}
		body, err := f.Fetch(context.Background(), src, republicDay)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(BeNil())
	})

	It("propagates a 404 on an ordinary trading day as NotFound", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := fetcher.New(resty.New(), circuitbreaker.NewRegistry(0, 0))
		f.Calendars["NSE"] = calendar.New("NSE")

		src := fetcher.Source{Exchange: "NSE", Host: srv.Listener.Addr().String(), URL: srv.URL}
		tuesday := time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)
		_, err := f.Fetch(context.Background(), src, tuesday)
		Expect(err).To(HaveOccurred())
	})
})
