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

// Package secrets masks credentials before graphs and configuration are
// printed or logged.
package secrets

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tombee/flowkit/pkg/workflow"
)

// Redacted replaces masked values.
const Redacted = "***"

// Masker masks known secret values and values stored under
// credential-like keys.
type Masker struct {
	// keyPatterns are lower-case substrings of keys whose values are secret.
	keyPatterns []string

	// envSuffixes mark environment variables holding secrets.
	envSuffixes []string

	secrets map[string]bool
}

// NewMasker creates a masker with the default key patterns.
func NewMasker() *Masker {
	return &Masker{
		keyPatterns: []string{"apikey", "api_key", "token", "secret", "password", "credential"},
		envSuffixes: []string{"_TOKEN", "_SECRET", "_KEY", "_PASSWORD"},
		secrets:     make(map[string]bool),
	}
}

const minEnvSecret = 8

// AddSecret registers a value to mask wherever it appears.
func (m *Masker) AddSecret(value string) {
	if value != "" {
		m.secrets[value] = true
	}
}

// AddSecretsFromEnv registers the values of secret-looking variables.
// Values shorter than minEnvSecret are ignored.
func (m *Masker) AddSecretsFromEnv(env map[string]string) {
	for key, value := range env {
		if len(value) < minEnvSecret {
			continue
		}
		upper := strings.ToUpper(key)
		for _, suffix := range m.envSuffixes {
			if strings.HasSuffix(upper, suffix) {
				m.AddSecret(value)
				break
			}
		}
	}
}

// IsSecretKey reports whether a data key holds a credential.
func (m *Masker) IsSecretKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range m.keyPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Mask replaces every registered secret in s. Longer secrets are
// replaced first so a secret that contains another is masked whole.
func (m *Masker) Mask(s string) string {
	known := make([]string, 0, len(m.secrets))
	for secret := range m.secrets {
		known = append(known, secret)
	}
	sort.Slice(known, func(i, j int) bool { return len(known[i]) > len(known[j]) })

	for _, secret := range known {
		s = strings.ReplaceAll(s, secret, Redacted)
	}
	return s
}

// MaskMap returns a copy of data with secrets masked. Non-empty string
// values under credential keys are redacted outright.
func (m *Masker) MaskMap(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok && s != "" && m.IsSecretKey(k) {
			out[k] = Redacted
			continue
		}
		out[k] = m.maskValue(v)
	}
	return out
}

func (m *Masker) maskValue(v any) any {
	switch val := v.(type) {
	case string:
		return m.Mask(val)
	case map[string]any:
		return m.MaskMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.maskValue(item)
		}
		return out
	default:
		return val
	}
}

// MaskGraph returns a copy of g with node credentials masked.
func (m *Masker) MaskGraph(g *workflow.Graph) *workflow.Graph {
	if g == nil {
		return nil
	}
	out := g.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Data = m.MaskMap(out.Nodes[i].Data)
	}
	return out
}

// MaskJSON masks a JSON document. Input that is not JSON is masked as text.
func (m *Masker) MaskJSON(doc string) string {
	var data any
	if err := json.Unmarshal([]byte(doc), &data); err != nil {
		return m.Mask(doc)
	}
	masked, err := json.Marshal(m.maskValue(data))
	if err != nil {
		return m.Mask(doc)
	}
	return string(masked)
}
