// Copyright 2024 Atomstate Technologies Private Limited
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errs defines the typed error values surfaced across the
// partition/reservation core.
package errs

import "go.uber.org/zap"

// Kind classifies a CoreError so callers can switch on it without string
// matching.
type Kind int

const (
	// Unknown is the zero value; it should never appear in a constructed error.
	Unknown Kind = iota
	// NotOwner means the local node is not the node that should serve this
	// request; the caller should proxy to the node the error carries.
	NotOwner
	// Timeout means a timed lock acquisition did not complete in the
	// requested budget.
	Timeout
	// NoData means a cross-datacenter read found no version for the
	// partition on this node.
	NoData
	// AlreadyReleased means a reservation handle was released more than
	// once. The contract treats this as a programmer error; the guard is
	// best-effort, not a correctness mechanism.
	AlreadyReleased
	// InvalidConfig means a configuration value failed validation.
	InvalidConfig
)

func (k Kind) String() string {
	switch k {
	case NotOwner:
		return "not_owner"
	case Timeout:
		return "timeout"
	case NoData:
		return "no_data"
	case AlreadyReleased:
		return "already_released"
	case InvalidConfig:
		return "invalid_config"
	default:
		return "unknown"
	}
}

// CoreError is the typed error this module returns for the Kinds above.
// Structural failures (an out-of-range or uninitialized partition, an
// unreadable config file) are returned as plain formatted errors instead.
type CoreError struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface, including the cause when present.
func (e *CoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any, enabling errors.Is/As.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Log writes the error to the given logger at Error level, including the
// cause as a structured field when present.
func (e *CoreError) Log(logger *zap.Logger) {
	if logger == nil {
		return
	}
	if e.Cause != nil {
		logger.Error(e.Message, zap.String("kind", e.Kind.String()), zap.Error(e.Cause))
		return
	}
	logger.Error(e.Message, zap.String("kind", e.Kind.String()))
}

// New creates a CoreError with the given kind and message and no cause.
func New(kind Kind, message string) error {
	return &CoreError{Kind: kind, Message: message}
}

// Wrap creates a CoreError with the given kind, message, and cause.
func Wrap(kind Kind, message string, cause error) error {
	return &CoreError{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is a CoreError of the given kind.
func Is(err error, kind Kind) bool {
	ce, ok := err.(*CoreError)
	if !ok {
		return false
	}
	return ce.Kind == kind
}
