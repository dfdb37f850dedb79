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

package llm

import (
	"fmt"
	"strings"
)

// Credentials defines the interface for provider authentication configuration.
type Credentials interface {
	// Validate checks if the credentials are complete.
	Validate() error

	// Redacted returns a safe-to-log version of the credentials.
	Redacted() string

	// ProviderType returns the type of provider these credentials are for.
	ProviderType() string
}

// APIKeyCredentials holds authentication for hosted providers.
type APIKeyCredentials struct {
	// APIKey is the authentication token for the provider's API.
	APIKey string

	// BaseURL is an optional override for the API endpoint.
	BaseURL string
}

// Validate checks that the API key is present.
// Key formats vary by vendor, so only presence is checked.
func (c APIKeyCredentials) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	return nil
}

// Redacted returns a safe-to-log version with the API key masked.
func (c APIKeyCredentials) Redacted() string {
	masked := maskSecret(c.APIKey)
	if c.BaseURL != "" {
		return fmt.Sprintf("APIKey: %s, BaseURL: %s", masked, c.BaseURL)
	}
	return fmt.Sprintf("APIKey: %s", masked)
}

// ProviderType returns "api".
func (c APIKeyCredentials) ProviderType() string {
	return "api"
}

// LocalCredentials holds configuration for keyless local runtimes such as Ollama.
type LocalCredentials struct {
	// BaseURL is the runtime endpoint.
	// Defaults to http://localhost:11434 if empty.
	BaseURL string
}

// Validate always succeeds; local runtimes need no key.
func (c LocalCredentials) Validate() error {
	return nil
}

// Redacted returns the endpoint, which is not secret.
func (c LocalCredentials) Redacted() string {
	if c.BaseURL != "" {
		return fmt.Sprintf("BaseURL: %s", c.BaseURL)
	}
	return "BaseURL: http://localhost:11434 (default)"
}

// ProviderType returns "local".
func (c LocalCredentials) ProviderType() string {
	return "local"
}

// maskSecret returns a masked version of a secret string.
// Shows first 4 and last 4 characters with asterisks in between.
func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

var (
	_ Credentials = APIKeyCredentials{}
	_ Credentials = LocalCredentials{}
)
