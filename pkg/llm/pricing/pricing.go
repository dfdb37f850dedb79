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

// Package pricing holds per-model token prices and the cost arithmetic
// built on them. Built-in prices live with the model table; a Manager
// layers user overrides from a YAML file on top so published price
// changes do not need a release.
package pricing

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Rate is the price of a model per thousand tokens.
type Rate struct {
	InputPerKTokens  float64 `yaml:"input_per_1k" json:"inputPerKTokens"`
	OutputPerKTokens float64 `yaml:"output_per_1k" json:"outputPerKTokens"`
	Currency         string  `yaml:"currency,omitempty" json:"currency"`
}

// ModelPricing is an override entry for one provider/model pair.
type ModelPricing struct {
	// Provider is the provider id (e.g., "openai", "anthropic").
	Provider string `yaml:"provider" json:"provider"`

	// Model is the registry model id (e.g., "gpt-4o").
	Model string `yaml:"model" json:"model"`

	Rate `yaml:",inline"`

	// EffectiveDate is when this price became effective.
	EffectiveDate time.Time `yaml:"effective_date" json:"effective_date"`
}

// Config is the on-disk override document.
type Config struct {
	Version   string         `yaml:"version" json:"version"`
	UpdatedAt time.Time      `yaml:"updated_at" json:"updated_at"`
	Models    []ModelPricing `yaml:"models" json:"models"`
}

// Manager serves price overrides with staleness warnings.
// It is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	config *Config

	configPath string

	// stalenessThreshold is how old a price can be before warning (default: 90 days).
	stalenessThreshold time.Duration
}

// NewManager creates a manager with no overrides.
func NewManager() *Manager {
	return &Manager{
		config:             &Config{},
		stalenessThreshold: 90 * 24 * time.Hour,
	}
}

// NewManagerWithConfig creates a manager and loads overrides from path.
// A missing file is not an error.
func NewManagerWithConfig(path string) (*Manager, error) {
	m := NewManager()
	m.configPath = path
	if err := m.Load(); err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}
	return m, nil
}

// Load (re)reads the override file. With no path configured it does nothing.
func (m *Manager) Load() error {
	if m.configPath == "" {
		return nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read pricing config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse pricing config: %w", err)
	}
	for i, mp := range cfg.Models {
		if mp.Provider == "" || mp.Model == "" {
			return fmt.Errorf("pricing entry %d: provider and model are required", i)
		}
		if mp.InputPerKTokens < 0 || mp.OutputPerKTokens < 0 {
			return fmt.Errorf("pricing entry %s:%s: prices must not be negative", mp.Provider, mp.Model)
		}
		if mp.Currency == "" {
			cfg.Models[i].Currency = "USD"
		}
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

// Lookup returns the override for a provider and model, or nil.
func (m *Manager) Lookup(provider, model string) *ModelPricing {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.config.Models {
		mp := &m.config.Models[i]
		if mp.Provider == provider && mp.Model == model {
			out := *mp
			return &out
		}
	}
	return nil
}

// LookupWithWarning returns the override and a staleness warning if applicable.
func (m *Manager) LookupWithWarning(provider, model string) (*ModelPricing, string) {
	mp := m.Lookup(provider, model)
	if mp == nil || mp.EffectiveDate.IsZero() {
		return mp, ""
	}

	m.mu.RLock()
	threshold := m.stalenessThreshold
	m.mu.RUnlock()

	age := time.Since(mp.EffectiveDate)
	if age > threshold {
		days := int(age.Hours() / 24)
		return mp, fmt.Sprintf("pricing for %s:%s is %d days old - update %s", provider, model, days, m.pathOrDefault())
	}
	return mp, ""
}

func (m *Manager) pathOrDefault() string {
	if m.configPath == "" {
		return "the pricing override file"
	}
	return m.configPath
}

// SetStalenessThreshold sets the age after which prices are considered stale.
func (m *Manager) SetStalenessThreshold(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stalenessThreshold = d
}

// Config returns a copy of the loaded overrides.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := *m.config
	cfg.Models = append([]ModelPricing(nil), m.config.Models...)
	return cfg
}
