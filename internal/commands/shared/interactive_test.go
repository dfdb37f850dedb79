package shared

import (
	"testing"
)

func TestIsNonInteractive_Env(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"explicit", "FLOWKIT_NON_INTERACTIVE", "true"},
		{"CI=true", "CI", "true"},
		{"CI=1", "CI", "1"},
		{"github actions", "GITHUB_ACTIONS", "true"},
		{"jenkins", "JENKINS_HOME", "/var/lib/jenkins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if !IsNonInteractive() {
				t.Errorf("expected non-interactive with %s=%s", tt.key, tt.val)
			}
		})
	}
}
