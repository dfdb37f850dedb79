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

package workflow

import (
	"fmt"
	"strconv"

	"github.com/tombee/flowkit/pkg/param"
)

// AsFloat reads a numeric value, accepting numeric strings.
func AsFloat(v any) (float64, bool) {
	if f, ok := param.Number(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// AsInt reads a numeric value truncated to int.
func AsInt(v any) (int, bool) {
	f, ok := AsFloat(v)
	return int(f), ok
}

// AsString reads a string value. Non-string scalars are formatted.
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool, int, int64, float64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

// AsBool reads a boolean value, accepting "true"/"false" strings.
func AsBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	default:
		return false, false
	}
}

func floatPtr(v any) *float64 {
	if f, ok := AsFloat(v); ok {
		return &f
	}
	return nil
}

func intPtr(v any) *int {
	if i, ok := AsInt(v); ok {
		return &i
	}
	return nil
}

func boolPtr(v any) *bool {
	if b, ok := AsBool(v); ok {
		return &b
	}
	return nil
}

func str(v any) string {
	s, _ := AsString(v)
	return s
}
