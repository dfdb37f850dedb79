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

package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const (
	// EnvBackendPriority lets environment variables override stored secrets.
	EnvBackendPriority = 100

	envSecretPrefix = "FLOWKIT_SECRET_"
)

// EnvBackend reads secrets from environment variables. It is read-only.
type EnvBackend struct {
	lookup func(string) string
}

// NewEnvBackend creates a backend over the process environment.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{lookup: os.Getenv}
}

func (e *EnvBackend) Name() string { return "env" }

// Get checks FLOWKIT_SECRET_<KEY> first, then the vendor alias for
// provider keys ("providers/anthropic/api_key" -> ANTHROPIC_API_KEY).
func (e *EnvBackend) Get(_ context.Context, key string) (string, error) {
	if v := e.lookup(envName(key)); v != "" {
		return v, nil
	}
	if alias := providerAlias(key); alias != "" {
		if v := e.lookup(alias); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
}

func (e *EnvBackend) Set(context.Context, string, string) error { return ErrReadOnlyBackend }
func (e *EnvBackend) Delete(context.Context, string) error      { return ErrReadOnlyBackend }
func (e *EnvBackend) Available() bool                           { return true }
func (e *EnvBackend) Priority() int                             { return EnvBackendPriority }

// envName maps "providers/openai/api_key" to FLOWKIT_SECRET_PROVIDERS_OPENAI_API_KEY.
func envName(key string) string {
	r := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return envSecretPrefix + strings.ToUpper(r.Replace(key))
}

func providerAlias(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) == 3 && parts[0] == "providers" && parts[2] == "api_key" {
		return strings.ToUpper(strings.ReplaceAll(parts[1], "-", "_")) + "_API_KEY"
	}
	if key == FlowiseKey {
		return "FLOWISE_API_KEY"
	}
	return ""
}
