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

	"github.com/tombee/flowkit/pkg/errors"
)

var (
	// ErrNoActiveProvider indicates no configured provider is active.
	ErrNoActiveProvider = errors.New("no active provider configured")

	// ErrProviderInactive indicates the requested provider is disabled.
	ErrProviderInactive = errors.New("provider is not active")

	// ErrNoModel indicates a provider lists no models.
	ErrNoModel = errors.New("provider has no models")
)

// DefaultProviderID is the alias that resolves to the default provider.
const DefaultProviderID = "default"

// Provider is a resolved set of credentials and models for one vendor
// endpoint.
type Provider struct {
	ID       string   `yaml:"id" json:"id"`
	Kind     string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	BaseURL  string   `yaml:"base_url,omitempty" json:"baseUrl,omitempty"`
	APIKey   string   `yaml:"api_key,omitempty" json:"-"`
	Models   []string `yaml:"models" json:"models"`
	IsActive bool     `yaml:"active" json:"isActive"`
}

// Vendor returns the model vendor of the provider. Kind wins when set,
// otherwise the id is used ("openai", "anthropic", ...).
func (p Provider) Vendor() string {
	if p.Kind != "" {
		return p.Kind
	}
	return p.ID
}

// DefaultModel returns the first listed model.
func (p Provider) DefaultModel() (string, error) {
	if len(p.Models) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoModel, p.ID)
	}
	return p.Models[0], nil
}

// Credentials returns the credentials for the provider.
func (p Provider) Credentials() Credentials {
	if ProviderName(p.Vendor()) == ProviderLocal || p.Vendor() == "ollama" {
		return LocalCredentials{BaseURL: p.BaseURL}
	}
	return APIKeyCredentials{APIKey: p.APIKey, BaseURL: p.BaseURL}
}

// ProviderSet resolves provider ids to provider records.
type ProviderSet struct {
	providers []Provider
	defaultID string
}

// NewProviderSet builds a set. defaultID may be empty, in which case the
// first active provider is the default.
func NewProviderSet(defaultID string, providers ...Provider) *ProviderSet {
	return &ProviderSet{
		providers: append([]Provider(nil), providers...),
		defaultID: defaultID,
	}
}

// Resolve returns the provider with the given id. An empty id or
// "default" selects the configured default, falling back to the first
// active provider.
func (s *ProviderSet) Resolve(id string) (*Provider, error) {
	if id == "" || id == DefaultProviderID {
		if s.defaultID != "" {
			if p := s.find(s.defaultID); p != nil && p.IsActive {
				return p, nil
			}
		}
		for i := range s.providers {
			if s.providers[i].IsActive {
				p := s.providers[i]
				return &p, nil
			}
		}
		return nil, ErrNoActiveProvider
	}

	p := s.find(id)
	if p == nil {
		return nil, &errors.NotFoundError{Resource: "provider", ID: id}
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrProviderInactive, id)
	}
	return p, nil
}

func (s *ProviderSet) find(id string) *Provider {
	for i := range s.providers {
		if s.providers[i].ID == id {
			p := s.providers[i]
			return &p
		}
	}
	return nil
}

// Providers returns every provider in configuration order.
func (s *ProviderSet) Providers() []Provider {
	return append([]Provider(nil), s.providers...)
}
