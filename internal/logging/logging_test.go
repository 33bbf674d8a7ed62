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
package logging_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/sandeep-jaiswar/champion/internal/logging"
)

var _ = Describe("New", func() {
	It("defaults to info level on an unparseable level string", func() {
		logger := logging.New("not-a-level", false)
		Expect(logger.GetLevel()).To(Equal(zerolog.InfoLevel))
	})

	It("honors an explicit level", func() {
		logger := logging.New("debug", false)
		Expect(logger.GetLevel()).To(Equal(zerolog.DebugLevel))
	})
})

var _ = Describe("Component", func() {
	It("tags log lines with a component field", func() {
		var buf gbuf
		logger := zerolog.New(&buf)
		scoped := logging.Component(logger, "flow")
		scoped.Info().Msg("hello")

		var parsed map[string]any
		Expect(json.Unmarshal(buf.data, &parsed)).To(Succeed())
		Expect(parsed["component"]).To(Equal("flow"))
		Expect(parsed["message"]).To(Equal("hello"))
	})
})

type gbuf struct {
	data []byte
}

func (b *gbuf) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}
