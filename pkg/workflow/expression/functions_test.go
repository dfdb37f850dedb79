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

package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsFunc(t *testing.T) {
	tests := []struct {
		name       string
		collection any
		target     any
		want       bool
	}{
		{"slice hit", []any{"a", "b"}, "b", true},
		{"slice miss", []any{"a", "b"}, "c", false},
		{"string hit", "chatOpenAI", "OpenAI", true},
		{"empty substring", "chatOpenAI", "", false},
		{"map key", map[string]any{"apiKey": "x"}, "apiKey", true},
		{"map wrong key type", map[string]any{"apiKey": "x"}, 3, false},
		{"nil collection", nil, "x", false},
		{"unsupported", 42, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := containsFunc(tt.collection, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := containsFunc("only one")
	assert.Error(t, err)
}

func TestLenFunc(t *testing.T) {
	got, err := lenFunc([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = lenFunc(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = lenFunc(3.5)
	assert.Error(t, err)

	_, err = lenFunc()
	assert.Error(t, err)
}

func TestIsURLFunc(t *testing.T) {
	for in, want := range map[any]bool{
		"http://localhost:3000": true,
		"https://x.io/api":      true,
		"ftp://x.io":            false,
		"/relative":             false,
		"":                      false,
		12:                      false,
	} {
		got, err := isURLFunc(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %v", in)
	}
}
