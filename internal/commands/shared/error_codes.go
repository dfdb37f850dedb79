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

	flowerrors "github.com/tombee/flowkit/pkg/errors"
)

// Error codes for structured JSON output
const (
	// Input errors (E001-E099)
	ErrorCodeInvalidInput     = "E001" // Malformed agent or graph document
	ErrorCodeValidationFailed = "E002" // Field constraint violation
	ErrorCodeFileNotFound     = "E003" // File not found

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E201" // Invalid config file or value
	ErrorCodeMissingAPIKey = "E202" // No active provider or credential

	// Resource errors (E400-E499)
	ErrorCodeNotFound = "E401" // Resource not found
	ErrorCodeRemote   = "E402" // Flowise API failure
	ErrorCodeInternal = "E403" // Internal error
)

// JSONErrorsFor converts err into one or more structured errors. A
// MultiValidationError expands to one entry per failure.
func JSONErrorsFor(err error) []JSONError {
	var mve *flowerrors.MultiValidationError
	if errors.As(err, &mve) && len(mve.Errors) > 0 {
		out := make([]JSONError, 0, len(mve.Errors))
		for _, ve := range mve.Errors {
			out = append(out, JSONError{
				Code:       ErrorCodeValidationFailed,
				Message:    ve.Error(),
				Field:      ve.Field,
				Suggestion: ve.Suggestion,
			})
		}
		return out
	}

	var ve *flowerrors.ValidationError
	if errors.As(err, &ve) {
		return []JSONError{{
			Code:       ErrorCodeValidationFailed,
			Message:    err.Error(),
			Field:      ve.Field,
			Suggestion: ve.Suggestion,
		}}
	}

	code := ErrorCodeInternal
	switch ExitCodeFor(err) {
	case ExitInvalidInput:
		code = ErrorCodeInvalidInput
	case ExitConfig:
		code = ErrorCodeInvalidConfig
		var ce *flowerrors.ConfigError
		if !errors.As(err, &ce) {
			code = ErrorCodeMissingAPIKey
		}
	case ExitNotFound:
		code = ErrorCodeNotFound
	case ExitRemote:
		code = ErrorCodeRemote
	}
	return []JSONError{{Code: code, Message: err.Error()}}
}
