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

// Package logging builds champion's base zerolog.Logger, generalized from
// teacher's cmd/root.go single `log.Logger = log.Output(...)` assignment
// into an explicit constructor: every internal/ package here takes a
// zerolog.Logger field rather than reaching for the global singleton, so
// cmd/ builds one base logger and passes scoped children down into each
// component.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds champion's base logger. pretty selects teacher's
// zerolog.ConsoleWriter for an interactive terminal (champion's CLI
// commands); a non-pretty logger writes newline-delimited JSON to stderr,
// the shape a cron-scheduled run or log aggregator expects.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with a "component" field, the
// convention every internal/ package's own logging already follows (see
// e.g. internal/flow.Orchestrator.runTask's per-task logger).
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
