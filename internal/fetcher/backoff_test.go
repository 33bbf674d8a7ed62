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

var _ = Describe("FetchWithRetry backoff policy", func() {
	It("does not retry a 404 on an ordinary trading day", func() {
		var requestCount int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requestCount, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := fetcher.New(resty.New(), circuitbreaker.NewRegistry(0, 0))
		f.Calendars["NSE"] = calendar.New("NSE")
		src := fetcher.Source{Exchange: "NSE", Host: srv.Listener.Addr().String(), URL: srv.URL}

		_, err := f.FetchWithRetry(context.Background(), src, time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC))
		Expect(err).To(HaveOccurred())
		Expect(atomic.LoadInt64(&requestCount)).To(Equal(int64(1)))
	})

	It("gives up after exhausting attempts against a persistently failing host", func() {
		var requestCount int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requestCount, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		f := fetcher.New(resty.New(), circuitbreaker.NewRegistry(0, 0))
		src := fetcher.Source{Exchange: "NSE", Host: srv.Listener.Addr().String(), URL: srv.URL}

		_, err := f.FetchWithRetry(context.Background(), src, time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC))
		Expect(err).To(HaveOccurred())
		Expect(atomic.LoadInt64(&requestCount)).To(Equal(int64(fetcher.DefaultAttempts)))
	})
})
