package secrets

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/commands/shared"
	secretstore "github.com/tombee/flowkit/internal/secrets"
	"github.com/tombee/flowkit/internal/testing/fixture"
)

// withFileBackend adds an encrypted file backend under the isolated config dir.
func withFileBackend(t *testing.T) {
	t.Helper()
	dir := fixture.Isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("FLOWISE_API_KEY", "")
	path := filepath.Join(dir, "secrets.enc")
	shared.SecretBackends = func() []secretstore.Backend {
		return []secretstore.Backend{
			secretstore.NewEnvBackend(),
			secretstore.NewFileBackend(path, "test-master-key"),
		}
	}
}

func execute(stdin string, args ...string) (string, error) {
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSecrets_SetGetDelete(t *testing.T) {
	withFileBackend(t)

	out, err := execute("anthropic-key-0123456789\n", "set", "anthropic")
	require.NoError(t, err)
	assert.Contains(t, out, "stored providers/anthropic/api_key")

	out, err = execute("", "get", "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anth...6789\n", out)

	out, err = execute("", "get", "providers/anthropic/api_key", "--unmask")
	require.NoError(t, err)
	assert.Equal(t, "anthropic-key-0123456789\n", out)

	_, err = execute("", "delete", "anthropic", "--force")
	require.NoError(t, err)

	_, err = execute("", "get", "anthropic")
	require.Error(t, err)
	assert.Equal(t, shared.ExitNotFound, shared.ExitCodeFor(err))
}

func TestSecrets_SetEmptyValue(t *testing.T) {
	withFileBackend(t)

	_, err := execute("  \n", "set", "flowise")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
}

func TestSecrets_SetWithoutWritableBackend(t *testing.T) {
	fixture.Isolate(t)

	_, err := execute("value-123456789", "set", "flowise")
	require.Error(t, err)
	assert.Equal(t, shared.ExitConfig, shared.ExitCodeFor(err))
}

func TestSecrets_GetFromEnvironment(t *testing.T) {
	fixture.Isolate(t)

	out, err := execute("", "get", "openai", "--unmask")
	require.NoError(t, err)
	assert.Equal(t, fixture.APIKey+"\n", out)
}

func TestSecrets_DeleteNeedsForceWhenNonInteractive(t *testing.T) {
	withFileBackend(t)
	t.Setenv("FLOWKIT_NON_INTERACTIVE", "true")

	_, err := execute("", "delete", "flowise")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
}

func TestSecrets_Backends(t *testing.T) {
	withFileBackend(t)

	out, err := execute("", "backends")
	require.NoError(t, err)
	assert.Equal(t, "env\nfile\n", out)
}

func TestExpandKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "flowise", want: secretstore.FlowiseKey},
		{in: "openai", want: "providers/openai/api_key"},
		{in: "custom/key", want: "custom/key"},
		{in: "", wantErr: true},
		{in: "has space", wantErr: true},
		{in: `back\slash`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := expandKey(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "sk-a...wxyz", maskSecret("sk-abcdefghijklmnopqrstuvwxyz"))
}
