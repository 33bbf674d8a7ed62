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

// Package circuitbreaker wraps sony/gobreaker per upstream host: once an
// exchange bulletin host starts failing consistently, champion stops
// hammering it and fails fast with a CircuitOpen error instead, giving the
// host time to recover (spec §7).
package circuitbreaker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/sandeep-jaiswar/champion/internal/errors"
)

const (
	// DefaultFailureThreshold is the consecutive-failure count that trips a
	// breaker open.
	DefaultFailureThreshold uint32 = 5
	// DefaultOpenTimeout is how long a tripped breaker stays open before
	// allowing a single probe request through (half-open).
	DefaultOpenTimeout = 60 * time.Second
	// DefaultHalfOpenMaxRequests caps concurrent probes while half-open.
	DefaultHalfOpenMaxRequests uint32 = 1
)

// Registry holds one gobreaker.CircuitBreaker per host, created lazily on
// first use since the set of hosts (NSE, BSE, FRED, RBI mirrors) isn't known
// until the fetcher's first request to each.
type Registry struct {
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
	threshold uint32
	cooldown  time.Duration
}

// NewRegistry builds a Registry whose breakers trip after threshold
// consecutive failures and stay open for cooldown (config.CB.Threshold /
// config.CB.Cooldown). A zero threshold falls back to
// DefaultFailureThreshold, and a zero cooldown to DefaultOpenTimeout.
func NewRegistry(threshold int, cooldown time.Duration) *Registry {
	t := DefaultFailureThreshold
	if threshold > 0 {
		t = uint32(threshold)
	}
	c := DefaultOpenTimeout
	if cooldown > 0 {
		c = cooldown
	}
	return &Registry{
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
		threshold: t,
		cooldown:  c,
	}
}

func (r *Registry) breakerFor(host string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[host]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: DefaultHalfOpenMaxRequests,
		Timeout:     r.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= r.threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("host", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	r.breakers[host] = b
	return b
}

// Do runs fn through host's breaker. A trip translates gobreaker's
// ErrOpenState into champion's own CircuitOpen error so callers only ever
// see champion's closed error taxonomy.
func (r *Registry) Do(ctx context.Context, host string, fn func(ctx context.Context) error) error {
	b := r.breakerFor(host)
	_, err := b.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.CircuitOpen(host)
	}
	return err
}

// State reports a host's current breaker state.
func (r *Registry) State(host string) gobreaker.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[host]
	if !ok {
		return gobreaker.StateClosed
	}
	return b.State()
}
