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

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	flowerrors "github.com/tombee/flowkit/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *flowerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &flowerrors.ValidationError{
				Field:      "temperature",
				Message:    "value 3 is above maximum 2",
				Suggestion: "use a value between 0 and 2",
			},
			wantMsg: "validation failed on temperature: value 3 is above maximum 2",
		},
		{
			name: "without field",
			err: &flowerrors.ValidationError{
				Message: "unknown agent type",
			},
			wantMsg: "validation failed: unknown agent type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestMultiValidationError(t *testing.T) {
	multi := &flowerrors.MultiValidationError{}
	assert.False(t, multi.HasErrors())
	assert.Equal(t, "validation failed", multi.Error())

	multi.Add("llm.temperature", "out of range", "")
	assert.Equal(t, "validation failed on llm.temperature: out of range", multi.Error())

	multi.Add("", "node ghost not found", "check the node id")
	assert.True(t, multi.HasErrors())
	assert.Equal(t, "validation failed with 2 errors: llm.temperature: out of range; node ghost not found", multi.Error())
	assert.Len(t, multi.Messages(), 2)
	assert.Equal(t, "check the node id", flowerrors.SuggestionFor(multi))
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &flowerrors.NotFoundError{Resource: "model", ID: "gpt-9"})
	assert.Equal(t, "lookup: model not found: gpt-9", err.Error())
	assert.True(t, flowerrors.IsNotFound(err))
	assert.False(t, flowerrors.IsNotFound(errors.New("other")))
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := &flowerrors.ConfigError{Key: "catalog.path", Reason: "cannot read", Cause: cause}
	assert.Equal(t, "config error at catalog.path: cannot read", err.Error())
	assert.ErrorIs(t, err, cause)

	noKey := &flowerrors.ConfigError{Reason: "empty"}
	assert.Equal(t, "config error: empty", noKey.Error())
}

func TestRemoteError(t *testing.T) {
	err := &flowerrors.RemoteError{Operation: "create chatflow", StatusCode: 401, Message: "Unauthorized"}
	assert.Equal(t, "flowise create chatflow failed [HTTP 401]: Unauthorized", err.Error())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, flowerrors.Wrap(nil, "ctx"))
	base := errors.New("boom")
	wrapped := flowerrors.Wrapf(base, "loading %s", "nodes.yaml")
	assert.Equal(t, "loading nodes.yaml: boom", wrapped.Error())
	assert.True(t, flowerrors.Is(wrapped, base))
}
