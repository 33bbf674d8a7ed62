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
package fetcher

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/sandeep-jaiswar/champion/internal/errors"
)

const (
	DefaultAttempts    = 4
	DefaultInitDelay   = 2 * time.Second
	DefaultMaxDelay    = 30 * time.Second
)

// FetchWithRetry wraps Fetch in exponential backoff, retrying only on
// champion's retryable error kinds (network/timeout/connection). A nil, nil
// result (non-trading-day 404) and a non-retryable error both pass straight
// through without a retry.
func (f *Fetcher) FetchWithRetry(ctx context.Context, src Source, logicalDate time.Time) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			b, err := f.Fetch(ctx, src, logicalDate)
			body = b
			return err
		},
		retry.Context(ctx),
		retry.Attempts(DefaultAttempts),
		retry.Delay(DefaultInitDelay),
		retry.MaxDelay(DefaultMaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(errors.Retryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
