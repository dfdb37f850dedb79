package param

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/pkg/errors"
)

var temperature = Spec{
	Name:    "temperature",
	Label:   "Temperature",
	Type:    TypeNumber,
	Default: 0.7,
	Min:     Float(0),
	Max:     Float(2),
	Step:    Float(0.1),
}

func TestChecker_Check(t *testing.T) {
	c := NewChecker(nil)

	memoryType := Spec{Name: "memoryType", Type: TypeSelect, Options: []string{"buffer", "window", "summary"}}
	apiKey := Spec{Name: "apiKey", Type: TypeString, Required: true, Validator: `value != ""`}
	overlap := Spec{Name: "chunkOverlap", Type: TypeNumber, Validator: "params.chunkSize == nil || value < params.chunkSize"}

	tests := []struct {
		name     string
		spec     Spec
		value    any
		siblings map[string]any
		wantErr  string
	}{
		{name: "number in range", spec: temperature, value: 0.2},
		{name: "int accepted as number", spec: temperature, value: 1},
		{name: "json number", spec: temperature, value: json.Number("1.5")},
		{name: "above max", spec: temperature, value: 3.0, wantErr: "3 is out of range [0, 2]"},
		{name: "below min", spec: temperature, value: -0.1, wantErr: "out of range"},
		{name: "NaN", spec: temperature, value: math.NaN(), wantErr: "not a finite number"},
		{name: "infinity", spec: temperature, value: math.Inf(-1), wantErr: "not a finite number"},
		{name: "NaN without bounds", spec: Spec{Name: "weight", Type: TypeNumber}, value: math.NaN(), wantErr: "not a finite number"},
		{name: "string for number", spec: temperature, value: "hot", wantErr: "expected number, got string"},
		{name: "optional nil", spec: temperature, value: nil},
		{name: "required nil", spec: apiKey, value: nil, wantErr: "is required"},
		{name: "validator rejects", spec: apiKey, value: "", wantErr: "rejected by validator"},
		{name: "select ok", spec: memoryType, value: "window"},
		{name: "select unknown", spec: memoryType, value: "forever", wantErr: `"forever" is not an allowed option`},
		{name: "sibling ok", spec: overlap, value: 200, siblings: map[string]any{"chunkSize": 1000}},
		{name: "sibling violated", spec: overlap, value: 1000, siblings: map[string]any{"chunkSize": 1000}, wantErr: "rejected"},
		{name: "bool mismatch", spec: Spec{Name: "streaming", Type: TypeBoolean}, value: "yes", wantErr: "expected boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Check(tt.spec, tt.value, tt.siblings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			var ve *errors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.spec.Name, ve.Field)
		})
	}
}

func TestChecker_CheckAll(t *testing.T) {
	c := NewChecker(nil)
	specs := []Spec{
		temperature,
		{Name: "maxTokens", Type: TypeNumber, Min: Float(1), Max: Float(4096)},
		{Name: "model", Type: TypeString, Required: true},
	}

	assert.Nil(t, c.CheckAll(specs, map[string]any{"temperature": 0.5, "model": "gpt-4o"}))

	errs := c.CheckAll(specs, map[string]any{"temperature": 5, "maxTokens": 0, "extra": true})
	require.NotNil(t, errs)
	require.Len(t, errs.Errors, 3)
	assert.Equal(t, "temperature", errs.Errors[0].Field)
	assert.Equal(t, "maxTokens", errs.Errors[1].Field)
	assert.Equal(t, "model", errs.Errors[2].Field)
}

func TestApplyDefaults(t *testing.T) {
	specs := []Spec{
		temperature,
		{Name: "streaming", Type: TypeBoolean, Default: true},
		{Name: "stop", Type: TypeString},
	}
	config := map[string]any{"streaming": false}

	filled := ApplyDefaults(specs, config)
	assert.Equal(t, []string{"temperature"}, filled)
	assert.Equal(t, 0.7, config["temperature"])
	assert.Equal(t, false, config["streaming"])
	assert.NotContains(t, config, "stop")
}

func TestParse(t *testing.T) {
	v, err := Parse(temperature, "0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	_, err = Parse(temperature, "warm")
	assert.Error(t, err)

	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+infinity"} {
		_, err = Parse(temperature, raw)
		assert.Error(t, err, raw)
	}

	v, err = Parse(Spec{Name: "streaming", Type: TypeBoolean}, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Parse(Spec{Name: "memoryType", Type: TypeSelect}, "buffer")
	require.NoError(t, err)
	assert.Equal(t, "buffer", v)
}

func TestFind(t *testing.T) {
	s, ok := Find([]Spec{temperature}, "temperature")
	assert.True(t, ok)
	assert.Equal(t, "Temperature", s.Label)

	_, ok = Find([]Spec{temperature}, "missing")
	assert.False(t, ok)
}
