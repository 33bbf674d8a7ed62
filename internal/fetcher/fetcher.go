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

// Package fetcher downloads exchange bulletins over HTTP, grounded on
// teacher's provider/*.go resty usage: a plain *resty.Client per host, rate
// limiting via golang.org/x/time/rate, and archive/zip handling for
// providers (like NSE/BSE) that publish bulletins zipped.
package fetcher

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/sandeep-jaiswar/champion/internal/calendar"
	"github.com/sandeep-jaiswar/champion/internal/circuitbreaker"
	"github.com/sandeep-jaiswar/champion/internal/errors"
)

// Source describes one remote bulletin endpoint.
type Source struct {
	Exchange    string
	Host        string // used as the circuit-breaker key
	URL         string
	Zipped      bool
	FilePattern *regexp.Regexp // required when Zipped: the one entry name to extract
}

// Fetcher downloads bulletins with per-host rate limiting and circuit
// breaking, and treats a 404 on a non-trading day as an expected outcome
// rather than an upstream failure.
type Fetcher struct {
	Client    *resty.Client
	Breakers  *circuitbreaker.Registry
	Calendars map[string]*calendar.Calendar // by exchange

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

func New(client *resty.Client, breakers *circuitbreaker.Registry) *Fetcher {
	return &Fetcher{
		Client:    client,
		Breakers:  breakers,
		Calendars: make(map[string]*calendar.Calendar),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// RateLimit configures a requests-per-minute limit for host.
func (f *Fetcher) RateLimit(host string, requestsPerMinute int) {
	f.limitersMu.Lock()
	defer f.limitersMu.Unlock()
	f.limiters[host] = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.limitersMu.Lock()
	defer f.limitersMu.Unlock()
	return f.limiters[host]
}

// Fetch downloads src for logicalDate, returning the raw bulletin bytes
// (already unzipped, if src.Zipped). A 404 response on a date the source's
// calendar says isn't a trading day is translated to a nil, nil result
// instead of an error — the caller should simply skip the task.
func (f *Fetcher) Fetch(ctx context.Context, src Source, logicalDate time.Time) ([]byte, error) {
	if limiter := f.limiterFor(src.Host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, errors.Cancelled("rate limiter wait cancelled")
		}
	}

	var body []byte
	err := f.Breakers.Do(ctx, src.Host, func(ctx context.Context) error {
		resp, reqErr := f.Client.R().SetContext(ctx).Get(src.URL)
		if reqErr != nil {
			return errors.Network(fmt.Sprintf("fetching %s", src.URL), reqErr)
		}
		status := resp.StatusCode()
		switch {
		case status == http.StatusNotFound:
			return errors.NotFound(fmt.Sprintf("%s returned 404 for %s", src.URL, logicalDate.Format("2006-01-02")))
		case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
			// 408/429/5xx are transient: the server asked us to back off or
			// failed momentarily, so the retry loop should try again.
			return errors.Network(fmt.Sprintf("%s returned status %d", src.URL, status), nil)
		case status >= 400:
			// Any other 4xx means the request itself was wrong; retrying an
			// unchanged request against an unchanged URL never helps.
			return errors.Rejected(fmt.Sprintf("%s returned status %d", src.URL, status))
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		if errors.KindOf(err) == errors.KindNotFound {
			if cal, ok := f.Calendars[src.Exchange]; ok && !cal.IsTradingDay(logicalDate) {
				return nil, nil
			}
		}
		return nil, err
	}

	if !src.Zipped {
		return body, nil
	}
	return firstFileInZip(body, src.FilePattern)
}

// firstFileInZip extracts the single zip entry whose name matches pattern.
// Zero or multiple matches are an IntegrityError: a bulletin zip is expected
// to contain exactly one file of interest, and silently picking one among
// several would risk loading the wrong day's data.
func firstFileInZip(body []byte, pattern *regexp.Regexp) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, errors.Integrity("could not read bulletin zip archive", err)
	}
	if pattern == nil {
		return nil, errors.Integrity("zipped source has no file pattern configured", nil)
	}

	var matches []*zip.File
	for _, zf := range zr.File {
		if pattern.MatchString(zf.Name) {
			matches = append(matches, zf)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.Integrity(fmt.Sprintf("bulletin zip archive contained no file matching %s", pattern.String()), nil)
	case 1:
		// fall through
	default:
		names := make([]string, len(matches))
		for i, zf := range matches {
			names[i] = zf.Name
		}
		return nil, errors.Integrity(fmt.Sprintf("bulletin zip archive contained %d files matching %s: %v", len(matches), pattern.String(), names), nil)
	}

	f, err := matches[0].Open()
	if err != nil {
		return nil, errors.Integrity("could not open bulletin zip entry", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Integrity("could not read bulletin zip entry", err)
	}
	return data, nil
}
