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
package task

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Fingerprint derives a stable identity for one (spec, logical date)
// invocation, used as the task cache's key so a rerun for the same day can
// skip a task whose cached success is still fresh.
func Fingerprint(spec Spec, logicalDate time.Time) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", spec.Exchange, spec.Dataset, spec.Name, logicalDate.UTC().Format("2006-01-02"))
	return hex.EncodeToString(h.Sum(nil))
}
