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

// Package param describes tunable parameters and checks candidate values
// against them. Model registries and node modifiers share these specs so
// the same bounds apply wherever a parameter can be set.
package param

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/workflow/expression"
)

// Type is the value type of a parameter.
type Type string

const (
	TypeNumber  Type = "number"
	TypeString  Type = "string"
	TypeBoolean Type = "boolean"
	TypeSelect  Type = "select"
)

// Spec describes a single tunable parameter.
type Spec struct {
	Name        string   `yaml:"name" json:"name"`
	Label       string   `yaml:"label" json:"label"`
	Type        Type     `yaml:"type" json:"type"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Default     any      `yaml:"default,omitempty" json:"default,omitempty"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
	Min         *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Step        *float64 `yaml:"step,omitempty" json:"step,omitempty"`

	// Validator is an optional boolean expression over "value" and "params".
	Validator string `yaml:"validator,omitempty" json:"validator,omitempty"`
}

// Float returns a pointer to f, for filling Min/Max/Step literals.
func Float(f float64) *float64 {
	return &f
}

// Checker validates values against specs.
type Checker struct {
	eval *expression.Evaluator
}

// NewChecker creates a Checker. A nil evaluator gets a private one.
func NewChecker(eval *expression.Evaluator) *Checker {
	if eval == nil {
		eval = expression.New()
	}
	return &Checker{eval: eval}
}

// Check validates value against spec. siblings holds the other parameters
// of the same node or configuration and is visible to Validator as params.
// A nil value passes unless the parameter is required.
func (c *Checker) Check(spec Spec, value any, siblings map[string]any) error {
	if value == nil {
		if spec.Required {
			return &errors.ValidationError{
				Field:      spec.Name,
				Message:    "is required",
				Suggestion: fmt.Sprintf("set %s", describe(spec)),
			}
		}
		return nil
	}

	switch spec.Type {
	case TypeNumber:
		n, ok := Number(value)
		if !ok {
			return mismatch(spec, value)
		}
		if !finite(n) {
			return notFinite(spec, n)
		}
		if spec.Min != nil && n < *spec.Min {
			return outOfRange(spec, n)
		}
		if spec.Max != nil && n > *spec.Max {
			return outOfRange(spec, n)
		}
	case TypeString:
		if _, ok := value.(string); !ok {
			return mismatch(spec, value)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return mismatch(spec, value)
		}
	case TypeSelect:
		s, ok := value.(string)
		if !ok {
			return mismatch(spec, value)
		}
		if len(spec.Options) > 0 && !slices.Contains(spec.Options, s) {
			return &errors.ValidationError{
				Field:      spec.Name,
				Message:    fmt.Sprintf("%q is not an allowed option", s),
				Suggestion: fmt.Sprintf("choose one of %v", spec.Options),
			}
		}
	}

	if spec.Validator != "" {
		ok, err := c.eval.Check(spec.Validator, value, siblings)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", spec.Name)
		}
		if !ok {
			return &errors.ValidationError{
				Field:      spec.Name,
				Message:    fmt.Sprintf("value %v rejected by validator %q", value, spec.Validator),
				Suggestion: spec.Description,
			}
		}
	}
	return nil
}

// CheckAll validates every spec against config and collects all failures.
// Keys in config with no matching spec are ignored. Returns nil when every
// parameter passes.
func (c *Checker) CheckAll(specs []Spec, config map[string]any) *errors.MultiValidationError {
	var result errors.MultiValidationError
	for _, spec := range specs {
		if err := c.Check(spec, config[spec.Name], config); err != nil {
			var ve *errors.ValidationError
			if errors.As(err, &ve) {
				result.Errors = append(result.Errors, ve)
			} else {
				result.Add(spec.Name, err.Error(), "")
			}
		}
	}
	if !result.HasErrors() {
		return nil
	}
	return &result
}

// ApplyDefaults fills missing entries of config with each spec's default.
// Parameters without a default are left unset. It returns the names that
// were filled, in spec order.
func ApplyDefaults(specs []Spec, config map[string]any) []string {
	var filled []string
	for _, spec := range specs {
		if _, ok := config[spec.Name]; ok || spec.Default == nil {
			continue
		}
		config[spec.Name] = spec.Default
		filled = append(filled, spec.Name)
	}
	return filled
}

// Find returns the spec with the given name.
func Find(specs []Spec, name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Number converts any Go or JSON numeric value to float64.
// Strings are not coerced.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Parse converts a command-line string into the typed value a spec expects.
func Parse(spec Spec, raw string) (any, error) {
	switch spec.Type {
	case TypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || !finite(f) {
			return nil, &errors.ValidationError{
				Field:   spec.Name,
				Message: fmt.Sprintf("%q is not a number", raw),
			}
		}
		return f, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &errors.ValidationError{
				Field:   spec.Name,
				Message: fmt.Sprintf("%q is not a boolean", raw),
			}
		}
		return b, nil
	default:
		return raw, nil
	}
}

func describe(spec Spec) string {
	if spec.Label != "" {
		return spec.Label
	}
	return spec.Name
}

func mismatch(spec Spec, value any) error {
	return &errors.ValidationError{
		Field:      spec.Name,
		Message:    fmt.Sprintf("expected %s, got %T", spec.Type, value),
		Suggestion: fmt.Sprintf("provide a %s value for %s", spec.Type, describe(spec)),
	}
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

func notFinite(spec Spec, n float64) error {
	return &errors.ValidationError{
		Field:      spec.Name,
		Message:    fmt.Sprintf("%v is not a finite number", n),
		Suggestion: fmt.Sprintf("provide a finite number for %s", describe(spec)),
	}
}

func outOfRange(spec Spec, n float64) error {
	bounds := "["
	if spec.Min != nil {
		bounds += strconv.FormatFloat(*spec.Min, 'g', -1, 64)
	} else {
		bounds += "-inf"
	}
	bounds += ", "
	if spec.Max != nil {
		bounds += strconv.FormatFloat(*spec.Max, 'g', -1, 64)
	} else {
		bounds += "inf"
	}
	bounds += "]"
	return &errors.ValidationError{
		Field:      spec.Name,
		Message:    fmt.Sprintf("%s is out of range %s", strconv.FormatFloat(n, 'g', -1, 64), bounds),
		Suggestion: fmt.Sprintf("choose a value within %s", bounds),
	}
}
