package export

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/testing/fixture"
	"github.com/tombee/flowkit/pkg/flowise"
	"github.com/tombee/flowkit/pkg/workflow/generator"
)

const chatflowID = "2f1c5d3e-8a4b-4c6d-9e0f-1a2b3c4d5e6f"

func execute(args ...string) (string, error) {
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func graphFile(t *testing.T, dir string) string {
	t.Helper()
	return fixture.WriteGraph(t, dir, fixture.Graph(t, "helper", generator.AgentChat))
}

func TestExport_StdoutMasked(t *testing.T) {
	dir := fixture.Isolate(t)

	out, err := execute(graphFile(t, dir))
	require.NoError(t, err)
	assert.NotContains(t, out, fixture.APIKey)

	var flow flowise.Chatflow
	require.NoError(t, json.Unmarshal([]byte(out), &flow))
	assert.Equal(t, "helper", flow.Name)
	assert.Equal(t, flowise.TypeChatflow, flow.Type)
	assert.Contains(t, flow.FlowData, `"customNode"`)
}

func TestExport_ToFileKeepsKeys(t *testing.T) {
	dir := fixture.Isolate(t)
	target := filepath.Join(dir, "chatflow.json")

	out, err := execute(graphFile(t, dir), "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), fixture.APIKey)
}

func TestExport_JSON(t *testing.T) {
	dir := fixture.Isolate(t)
	shared.SetJSONForTest(true)

	out, err := execute(graphFile(t, dir))
	require.NoError(t, err)

	var resp struct {
		Success  bool             `json:"success"`
		Chatflow flowise.Chatflow `json:"chatflow"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Chatflow.FlowData)
}

func TestExport_Push(t *testing.T) {
	dir := fixture.Isolate(t)

	var (
		mu       sync.Mutex
		requests []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path+" "+r.Header.Get("Authorization"))
		mu.Unlock()
		var in flowise.Chatflow
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Contains(t, in.FlowData, fixture.APIKey, "pushed chatflows keep credentials")
		in.ID = chatflowID
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()
	t.Setenv("FLOWISE_BASE_URL", srv.URL)
	t.Setenv("FLOWISE_API_KEY", "fw-key")

	path := graphFile(t, dir)

	out, err := execute(path, "--push")
	require.NoError(t, err)
	assert.Contains(t, out, "created chatflow "+chatflowID)

	// The second push replaces the recorded chatflow.
	out, err = execute(path, "--push")
	require.NoError(t, err)
	assert.Contains(t, out, "updated chatflow "+chatflowID)

	out, err = execute(path, "--push", "--id", chatflowID)
	require.NoError(t, err)
	assert.Contains(t, out, "updated chatflow "+chatflowID)

	out, err = execute(path, "--push", "--new")
	require.NoError(t, err)
	assert.Contains(t, out, "created chatflow "+chatflowID)

	mu.Lock()
	require.Len(t, requests, 4)
	assert.Equal(t, "POST /api/v1/chatflows Bearer fw-key", requests[0])
	assert.True(t, strings.HasPrefix(requests[1], "PUT /api/v1/chatflows/"+chatflowID))
	assert.True(t, strings.HasPrefix(requests[2], "PUT /api/v1/chatflows/"+chatflowID))
	assert.True(t, strings.HasPrefix(requests[3], "POST /api/v1/chatflows "))
	mu.Unlock()

	out, err = execute("history")
	require.NoError(t, err)
	assert.Contains(t, out, "helper")
	assert.Contains(t, out, chatflowID)
	assert.Contains(t, out, srv.URL)

	out, err = execute("history", "--forget", "helper")
	require.NoError(t, err)
	assert.Contains(t, out, "forgot helper")

	_, err = execute("history", "--forget", "helper")
	require.Error(t, err)
	assert.Equal(t, shared.ExitNotFound, shared.ExitCodeFor(err))
}

func TestExport_HistoryEmpty(t *testing.T) {
	fixture.Isolate(t)

	out, err := execute("history")
	require.NoError(t, err)
	assert.Contains(t, out, "no chatflows pushed yet")

	shared.SetJSONForTest(true)
	out, err = execute("history")
	require.NoError(t, err)
	var resp struct {
		Pushes []json.RawMessage `json:"pushes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotNil(t, resp.Pushes)
	assert.Empty(t, resp.Pushes)
}

func TestExport_PushWithoutServer(t *testing.T) {
	dir := fixture.Isolate(t)
	t.Setenv("FLOWISE_BASE_URL", "")

	_, err := execute(graphFile(t, dir), "--push")
	require.Error(t, err)
	assert.Equal(t, shared.ExitConfig, shared.ExitCodeFor(err))
}

func TestExport_BadArguments(t *testing.T) {
	dir := fixture.Isolate(t)
	path := graphFile(t, dir)

	_, err := execute(path, "--id", chatflowID)
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))

	_, err = execute(path, "--new")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))

	_, err = execute(path, "--push", "--id", "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
}
