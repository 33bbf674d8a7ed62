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
package lake

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Lock is an advisory per-dataset lockfile guarding Coalesce/Cleanup.
// Contents are "<pid>\n<unix_nano>"; a lock older than staleAfter is
// reclaimed unconditionally on the next Acquire, per spec.md §5.
type Lock struct {
	path string
}

func NewLock(base, dataset string) *Lock {
	return &Lock{path: filepath.Join(base, fmt.Sprintf(".%s.lock", dataset))}
}

// Acquire creates the lockfile, reclaiming a stale one first.
func (l *Lock) Acquire(staleAfter time.Duration) (func(), error) {
	if stale, err := l.isStale(staleAfter); err == nil && stale {
		os.Remove(l.path)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock %s held: %w", l.path, err)
	}
	fmt.Fprintf(f, "%d\n%d", os.Getpid(), time.Now().UnixNano())
	f.Close()

	return func() { os.Remove(l.path) }, nil
}

func (l *Lock) isStale(staleAfter time.Duration) (bool, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return false, err
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) < 2 {
		return true, nil
	}
	nanos, err := strconv.ParseInt(lines[1], 10, 64)
	if err != nil {
		return true, nil
	}
	return time.Since(time.Unix(0, nanos)) > staleAfter, nil
}
