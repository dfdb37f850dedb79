package jq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type model struct {
	ID       string  `json:"id"`
	Provider string  `json:"provider"`
	Price    float64 `json:"price"`
}

func TestExecutor_Execute(t *testing.T) {
	models := []model{
		{ID: "gpt-4o", Provider: "openai", Price: 0.005},
		{ID: "claude-3-haiku", Provider: "anthropic", Price: 0.00025},
	}

	tests := []struct {
		name       string
		expression string
		want       any
		wantErr    bool
	}{
		{"empty expression returns input", "", []any{
			map[string]any{"id": "gpt-4o", "provider": "openai", "price": 0.005},
			map[string]any{"id": "claude-3-haiku", "provider": "anthropic", "price": 0.00025},
		}, false},
		{"single result", ".[0].id", "gpt-4o", false},
		{"multiple results", ".[].id", []any{"gpt-4o", "claude-3-haiku"}, false},
		{"no results", ".[] | select(.provider == \"google\")", nil, false},
		{"map", "map(.provider)", []any{"openai", "anthropic"}, false},
		{"parse error", ".[", nil, true},
		{"runtime error", ".[0].id | tonumber", nil, true},
	}

	e := NewExecutor(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Execute(context.Background(), tt.expression, models)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutor_Validate(t *testing.T) {
	e := NewExecutor(0)
	assert.NoError(t, e.Validate(""))
	assert.NoError(t, e.Validate(".nodes | length"))
	assert.Error(t, e.Validate(".nodes |"))
	assert.Error(t, e.Validate("undefined_fn(1)"))
}
