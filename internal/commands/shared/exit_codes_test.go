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
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	flowerrors "github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
)

func TestExitCodeFor(t *testing.T) {
	mve := &flowerrors.MultiValidationError{}
	mve.Add("temperature", "out of range", "")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", fmt.Errorf("boom"), ExitFailed},
		{"exit error", &ExitError{Code: 7, Message: "x"}, 7},
		{"validation", &flowerrors.ValidationError{Field: "type", Message: "bad"}, ExitInvalidInput},
		{"multi validation", mve, ExitInvalidInput},
		{"modification", &modifier.ModificationError{Err: mve}, ExitInvalidInput},
		{"wrapped not found", fmt.Errorf("lookup: %w", &flowerrors.NotFoundError{Resource: "model", ID: "x"}), ExitNotFound},
		{"config", &flowerrors.ConfigError{Key: "log.level", Reason: "bad"}, ExitConfig},
		{"no provider", llm.ErrNoActiveProvider, ExitConfig},
		{"inactive provider", fmt.Errorf("x: %w", llm.ErrProviderInactive), ExitConfig},
		{"remote", &flowerrors.RemoteError{Operation: "create chatflow", StatusCode: 500}, ExitRemote},
		{"cancelled", context.Canceled, ExitFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestExitError_Error(t *testing.T) {
	cause := fmt.Errorf("no such file")

	assert.Equal(t, "failed to read a.yaml: no such file", NewInvalidInputError("failed to read a.yaml", cause).Error())
	assert.Equal(t, "no such file", (&ExitError{Code: 1, Cause: cause}).Error())
	assert.Equal(t, "", (&ExitError{Code: 1}).Error())
	assert.ErrorIs(t, NewConfigError("x", cause), cause)
}

func TestJSONErrorsFor(t *testing.T) {
	mve := &flowerrors.MultiValidationError{}
	mve.Add("temperature", "out of range", "use 0-2")
	mve.Add("topP", "out of range", "")

	got := JSONErrorsFor(&modifier.ModificationError{Err: mve})
	assert.Len(t, got, 2)
	assert.Equal(t, ErrorCodeValidationFailed, got[0].Code)
	assert.Equal(t, "temperature", got[0].Field)
	assert.Equal(t, "use 0-2", got[0].Suggestion)

	got = JSONErrorsFor(&flowerrors.NotFoundError{Resource: "model", ID: "gpt-9"})
	assert.Equal(t, []JSONError{{Code: ErrorCodeNotFound, Message: "model not found: gpt-9"}}, got)

	got = JSONErrorsFor(llm.ErrNoActiveProvider)
	assert.Equal(t, ErrorCodeMissingAPIKey, got[0].Code)

	got = JSONErrorsFor(&flowerrors.ConfigError{Key: "log.level", Reason: "bad"})
	assert.Equal(t, ErrorCodeInvalidConfig, got[0].Code)
}
