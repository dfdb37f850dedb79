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

package shared

import (
	"errors"
	"fmt"
	"os"

	flowerrors "github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
)

// Exit codes for flowkit commands
const (
	ExitSuccess      = 0
	ExitFailed       = 1
	ExitInvalidInput = 2 // Malformed agent/graph file or rejected modification
	ExitConfig       = 3 // Bad config file or missing provider credentials
	ExitNotFound     = 4 // Unknown model, node, provider or catalog entry
	ExitRemote       = 5 // Flowise API failure
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewInvalidInputError creates an error for unreadable or invalid input files
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidInput, Message: msg, Cause: cause}
}

// NewConfigError creates an error for configuration problems
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Cause: cause}
}

// ExitCodeFor maps an error to the process exit code. ExitError codes win;
// otherwise the typed errors from pkg/errors decide.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var (
		ve  *flowerrors.ValidationError
		mve *flowerrors.MultiValidationError
		me  *modifier.ModificationError
		nf  *flowerrors.NotFoundError
		ce  *flowerrors.ConfigError
		re  *flowerrors.RemoteError
	)
	switch {
	case errors.As(err, &ce),
		errors.Is(err, llm.ErrNoActiveProvider),
		errors.Is(err, llm.ErrProviderInactive):
		return ExitConfig
	case errors.As(err, &nf):
		return ExitNotFound
	case errors.As(err, &re):
		return ExitRemote
	case errors.As(err, &me), errors.As(err, &ve), errors.As(err, &mve):
		return ExitInvalidInput
	}
	return ExitFailed
}

// HandleExitError prints err with any suggestion and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}

	// An ExitError with no message has already been reported (e.g. as JSON).
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Error() != "" {
		fmt.Fprintln(os.Stderr, RenderError("Error: "+err.Error()))
		if suggestion := flowerrors.SuggestionFor(err); suggestion != "" {
			fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", suggestion)
		}
	}

	os.Exit(ExitCodeFor(err))
}
