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
package state_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/state"
)

var _ = Describe("SourcePathHash", func() {
	It("is stable for the same path", func() {
		a := state.SourcePathHash("raw/equity_ohlc/2026/01/05/sec_bhavdata_full.csv")
		b := state.SourcePathHash("raw/equity_ohlc/2026/01/05/sec_bhavdata_full.csv")
		Expect(a).To(Equal(b))
	})

	It("differs across distinct paths", func() {
		a := state.SourcePathHash("raw/equity_ohlc/2026/01/05/sec_bhavdata_full.csv")
		b := state.SourcePathHash("raw/equity_ohlc/2026/01/06/sec_bhavdata_full.csv")
		Expect(a).NotTo(Equal(b))
	})
})
