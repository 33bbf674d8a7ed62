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

// Package errors implements champion's closed error taxonomy (by kind, not
// name): every failure that crosses a component boundary is one of these
// kinds, carries a human message, and exposes a machine-readable recovery
// hint. Components never return a bare fmt.Errorf across a public contract.
package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork     Kind = "network"
	KindIntegrity   Kind = "integrity"
	KindSchema      Kind = "schema"
	KindValidation  Kind = "validation"
	KindIO          Kind = "io"
	KindWarehouse   Kind = "warehouse"
	KindConfig      Kind = "config"
	KindTimeout     Kind = "timeout"
	KindCancelled   Kind = "cancelled"
	KindNotFound    Kind = "not_found"
	KindCircuitOpen Kind = "circuit_open"
	KindRejected    Kind = "rejected"
	KindUnknown     Kind = "unknown"
)

// retryableKinds mirrors spec.md §7's propagation policy.
var retryableKinds = map[Kind]bool{
	KindNetwork:   true,
	KindTimeout:   true,
	KindWarehouse: true, // connect errors; SchemaMismatchError/LoadMismatchError also report KindWarehouse but override Retryable to false
}

// Error is the single error type every champion component returns across a
// public contract boundary.
type Error struct {
	Kind    Kind
	Message string
	Hint    map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Retryable() bool { return retryableKinds[e.Kind] }

func New(kind Kind, message string, cause error, hint map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, Hint: hint}
}

func Network(message string, cause error) *Error { return New(KindNetwork, message, cause, nil) }

func Integrity(message string, cause error) *Error {
	return New(KindIntegrity, message, cause, nil)
}

func Timeout(message string, cause error) *Error { return New(KindTimeout, message, cause, nil) }

func Cancelled(message string) *Error { return New(KindCancelled, message, nil, nil) }

func CircuitOpen(host string) *Error {
	return New(KindCircuitOpen, fmt.Sprintf("circuit open for host %s", host), nil,
		map[string]any{"retryable": false, "host": host})
}

func NotFound(message string) *Error { return New(KindNotFound, message, nil, nil) }

// Rejected marks a permanent 4xx response (anything but 408/429) per
// spec.md §4.1: the request itself was bad, so retrying it changes nothing.
func Rejected(message string) *Error { return New(KindRejected, message, nil, nil) }

// SchemaError is raised on column drift: a required column is missing, or an
// unexpected type is found where a specific one was declared.
type SchemaError struct {
	Expected []string
	Found    []string
	Missing  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema drift: expected=%v found=%v missing=%v", e.Expected, e.Found, e.Missing)
}

func (e *SchemaError) Kind() Kind { return KindSchema }

// LoadMismatchError is fatal and never retried: the warehouse's post-load row
// count didn't match the source batch.
type LoadMismatchError struct {
	Table     string
	Partition string
	Expected  int64
	Actual    int64
}

func (e *LoadMismatchError) Error() string {
	return fmt.Sprintf("load mismatch for %s/%s: expected %d rows, warehouse has %d",
		e.Table, e.Partition, e.Expected, e.Actual)
}

func (e *LoadMismatchError) Kind() Kind { return KindWarehouse }

func (e *LoadMismatchError) Retryable() bool { return false }

// SchemaMismatchError indicates the warehouse table's column set disagrees
// with the source batch's schema reference; fatal, non-retryable.
type SchemaMismatchError struct {
	Table   string
	Details string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch loading %s: %s", e.Table, e.Details)
}

func (e *SchemaMismatchError) Kind() Kind { return KindWarehouse }

func (e *SchemaMismatchError) Retryable() bool { return false }

// ConnectionError wraps a warehouse/network connect failure; retryable at the
// task layer.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string  { return fmt.Sprintf("connection error: %v", e.Cause) }
func (e *ConnectionError) Unwrap() error  { return e.Cause }
func (e *ConnectionError) Kind() Kind     { return KindWarehouse }
func (e *ConnectionError) Retryable() bool { return true }

// KindOf extracts the Kind from any error in champion's taxonomy, defaulting
// to KindUnknown for anything else (the only permitted catch-all, per the
// task runtime's outermost boundary).
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var ke interface{ Kind() Kind }
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	return KindUnknown
}

// Retryable reports whether err should be retried by the task runtime.
func Retryable(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Retryable()
	}
	var re interface{ Retryable() bool }
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}
