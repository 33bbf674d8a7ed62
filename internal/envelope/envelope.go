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

// Package envelope implements the event envelope that wraps every payload
// record (spec §3) and is the sole entry point for creating new records — no
// other component fabricates an Envelope inline.
package envelope

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sandeep-jaiswar/champion/internal/clock"
)

// Envelope wraps every canonical payload record.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	IngestTime    time.Time `json:"ingest_time"`
	Source        string    `json:"source"`
	SchemaVersion string    `json:"schema_version"`
	EntityID      string    `json:"entity_id"`
}

// Stamp deterministically builds an Envelope for a payload. EventID is a
// stable hash of source+entity_id+event_time so re-parsing identical input
// reproduces the same event_id (spec §4.2).
func Stamp(clk clock.Clock, source, schemaVersion, entityID string, eventTime time.Time) Envelope {
	return Envelope{
		EventID:       eventID(source, entityID, eventTime),
		EventTime:     eventTime,
		IngestTime:    clk.Now(),
		Source:        source,
		SchemaVersion: schemaVersion,
		EntityID:      entityID,
	}
}

func eventID(source, entityID string, eventTime time.Time) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d", source, entityID, eventTime.UTC().UnixMilli())
	return hex.EncodeToString(h.Sum(nil))
}

// WithinTolerance reports whether the envelope's event_time is no later
// than ingest_time plus tolerance, per spec §3's freshness invariant.
func (e Envelope) WithinTolerance(tolerance time.Duration) bool {
	return !e.EventTime.After(e.IngestTime.Add(tolerance))
}
