package flowise

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/httpclient"
)

const flowID = "2f1c5d3e-8a4b-4c6d-9e0f-1a2b3c4d5e6f"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := httpclient.DefaultConfig()
	cfg.RetryAttempts = 1
	cfg.RetryBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	c, err := NewClient(server.URL+"/", "fw-key", cfg, WithLogger(log.Discard()))
	require.NoError(t, err)
	return c
}

func TestClient_CreateChatflow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/chatflows", r.URL.Path)
		assert.Equal(t, "Bearer fw-key", r.Header.Get("Authorization"))

		var in Chatflow
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = flowID
		json.NewEncoder(w).Encode(in)
	})

	out, err := c.CreateChatflow(context.Background(), &Chatflow{Name: "helper", FlowData: "{}", Type: TypeChatflow})
	require.NoError(t, err)
	assert.Equal(t, flowID, out.ID)
	assert.Equal(t, "helper", out.Name)
}

func TestClient_UpdateChatflow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/chatflows/"+flowID, r.URL.Path)
		json.NewEncoder(w).Encode(Chatflow{ID: flowID, Name: "renamed"})
	})

	out, err := c.UpdateChatflow(context.Background(), flowID, &Chatflow{Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", out.Name)

	_, err = c.UpdateChatflow(context.Background(), "not-a-uuid", &Chatflow{})
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestClient_RemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.GetChatflow(context.Background(), flowID)
	require.Error(t, err)
	var re *errors.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusUnauthorized, re.StatusCode)
	assert.Equal(t, "get chatflow", re.Operation)
	assert.Equal(t, "unauthorized", re.Message)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("", "", httpclient.DefaultConfig())
	var ce *errors.ConfigError
	assert.True(t, errors.As(err, &ce))
}
