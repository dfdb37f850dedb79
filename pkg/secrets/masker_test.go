package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/pkg/workflow"
)

func TestMasker_Mask(t *testing.T) {
	m := NewMasker()
	m.AddSecret("sk-abc")
	m.AddSecret("sk-abcdef")
	m.AddSecret("")

	assert.Equal(t, "key=*** other=***", m.Mask("key=sk-abcdef other=sk-abc"))
	assert.Equal(t, "nothing here", m.Mask("nothing here"))
}

func TestMasker_AddSecretsFromEnv(t *testing.T) {
	m := NewMasker()
	m.AddSecretsFromEnv(map[string]string{
		"OPENAI_API_KEY": "sk-env-0123",
		"FLOWISE_TOKEN":  "tok-4567-89",
		"SHORT_KEY":      "abc",
		"HOME":           "/home/me",
	})
	assert.Equal(t, "*** *** abc /home/me", m.Mask("sk-env-0123 tok-4567-89 abc /home/me"))
}

func TestMasker_MaskGraph(t *testing.T) {
	m := NewMasker()
	m.AddSecret("serp-123")

	g := &workflow.Graph{Nodes: []workflow.Node{
		{ID: "llm", Type: "chatOpenAI", Data: map[string]any{"apiKey": "sk-x", "modelName": "gpt-4", "temperature": 0.7}},
		{ID: "search", Type: "serpAPI", Data: map[string]any{"config": map[string]any{"url": "https://s?k=serp-123"}}},
		{ID: "local", Type: "chatOllama", Data: map[string]any{"apiKey": ""}},
	}}

	masked := m.MaskGraph(g)
	require.Len(t, masked.Nodes, 3)
	assert.Equal(t, Redacted, masked.Nodes[0].Data["apiKey"])
	assert.Equal(t, "gpt-4", masked.Nodes[0].Data["modelName"])
	assert.Equal(t, 0.7, masked.Nodes[0].Data["temperature"])
	assert.Equal(t, "https://s?k=***", masked.Nodes[1].Data["config"].(map[string]any)["url"])
	assert.Equal(t, "", masked.Nodes[2].Data["apiKey"])

	assert.Equal(t, "sk-x", g.Nodes[0].Data["apiKey"], "original graph must not change")
	assert.Nil(t, m.MaskGraph(nil))
}

func TestMasker_MaskJSON(t *testing.T) {
	m := NewMasker()
	m.AddSecret("hunter2")

	assert.JSONEq(t, `{"password":"***","note":"pw is ***","n":1}`,
		m.MaskJSON(`{"password":"x","note":"pw is hunter2","n":1}`))
	assert.Equal(t, "plain ***", m.MaskJSON("plain hunter2"))
}

func TestMasker_IsSecretKey(t *testing.T) {
	m := NewMasker()
	for _, k := range []string{"apiKey", "OPENAI_API_KEY", "accessToken", "clientSecret", "credentialId"} {
		assert.True(t, m.IsSecretKey(k), k)
	}
	for _, k := range []string{"modelName", "baseUrl", "topK"} {
		assert.False(t, m.IsSecretKey(k), k)
	}
}
