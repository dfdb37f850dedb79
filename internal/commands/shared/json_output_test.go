package shared

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EmitJSON(&buf, map[string]any{"count": 2}))
	assert.JSONEq(t, `{"count": 2}`, buf.String())
}

func TestEmitJSON_Query(t *testing.T) {
	SetQueryForTest(".models[].id")
	defer SetQueryForTest("")

	assert.True(t, GetJSON())

	var buf bytes.Buffer
	require.NoError(t, EmitJSON(&buf, map[string]any{
		"models": []map[string]string{{"id": "gpt-4o"}, {"id": "claude-3-haiku"}},
	}))
	assert.JSONEq(t, `["gpt-4o", "claude-3-haiku"]`, buf.String())
}

func TestEmitJSON_BadQuery(t *testing.T) {
	SetQueryForTest(".[")
	defer SetQueryForTest("")

	err := EmitJSON(&bytes.Buffer{}, map[string]any{})
	assert.Equal(t, ExitInvalidInput, ExitCodeFor(err))
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EmitJSONError(&buf, "validate", errors.New("boom")))
	assert.JSONEq(t, `{
		"@version": "1.0",
		"command": "validate",
		"success": false,
		"errors": [{"code": "E403", "message": "boom"}]
	}`, buf.String())
}
