// Copyright 2025 Tom Barlow
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

package errors

import (
	"fmt"
	"strings"
)

// ValidationError represents user input validation failures.
// Use this for malformed agent definitions, unknown node ids in
// modification requests, or parameter constraint violations.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// MultiValidationError collects several validation failures that were
// detected in one pass. Batch operations report all problems at once
// instead of stopping at the first one.
type MultiValidationError struct {
	Errors []*ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return e.Errors[0].Error()
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		if ve.Field != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", ve.Field, ve.Message))
		} else {
			msgs = append(msgs, ve.Message)
		}
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Add appends a validation failure.
func (e *MultiValidationError) Add(field, message, suggestion string) {
	e.Errors = append(e.Errors, &ValidationError{
		Field:      field,
		Message:    message,
		Suggestion: suggestion,
	})
}

// HasErrors reports whether any failure was collected.
func (e *MultiValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Messages returns the collected failures as plain strings.
func (e *MultiValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Error())
	}
	return msgs
}

// NotFoundError represents a resource not found error.
// Use this when a requested model, node, provider or catalog entry does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "model", "node", "provider")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "providers", "flowise.base_url")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// RemoteError represents a failure returned by the Flowise API.
type RemoteError struct {
	// Operation is what was attempted (e.g., "create chatflow")
	Operation string

	// StatusCode is the HTTP status code, if any
	StatusCode int

	// Message is the body or summary returned by the server
	Message string

	// Cause is the underlying transport error, if any
	Cause error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("flowise %s failed", e.Operation)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RemoteError) Unwrap() error {
	return e.Cause
}
