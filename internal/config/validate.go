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

package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tombee/flowkit/internal/secrets"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
)

var (
	validLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validFormats = map[string]bool{"json": true, "text": true}

	// envReference matches values written as ${VAR} or $VAR.
	envReference = regexp.MustCompile(`^\$\{?[A-Za-z_][A-Za-z0-9_]*\}?$`)
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	errs := &errors.MultiValidationError{}

	if !validLevels[c.Log.Level] {
		errs.Add("log.level", fmt.Sprintf("must be one of [trace, debug, info, warn, error], got %q", c.Log.Level), "")
	}
	if !validFormats[c.Log.Format] {
		errs.Add("log.format", fmt.Sprintf("must be one of [json, text], got %q", c.Log.Format), "")
	}

	w := c.Models.Weights
	if w.Quality < 0 || w.Speed < 0 || w.Feature < 0 || w.Price < 0 {
		errs.Add("models.weights", "weights must be non-negative", "")
	}

	d := c.Generator.Defaults
	if d.Temperature < 0 || d.Temperature > 2 {
		errs.Add("generator.defaults.temperature", fmt.Sprintf("must be between 0 and 2, got %g", d.Temperature), "")
	}
	if d.MaxTokens < 1 {
		errs.Add("generator.defaults.max_tokens", fmt.Sprintf("must be at least 1, got %d", d.MaxTokens), "")
	}
	if d.ChunkOverlap < 0 || d.ChunkOverlap >= d.ChunkSize {
		errs.Add("generator.defaults.chunk_overlap", fmt.Sprintf("must be between 0 and chunk_size (%d), got %d", d.ChunkSize, d.ChunkOverlap), "")
	}
	if d.TopK < 1 {
		errs.Add("generator.defaults.top_k", fmt.Sprintf("must be at least 1, got %d", d.TopK), "")
	}

	p := c.Validator.Penalties
	if p.Critical < 0 || p.Error < 0 || p.Warning < 0 {
		errs.Add("validator.penalties", "penalties must be non-negative", "")
	}
	if c.Validator.MaxPaths < 1 {
		errs.Add("validator.max_paths", fmt.Sprintf("must be at least 1, got %d", c.Validator.MaxPaths), "")
	}

	if c.Flowise.Timeout <= 0 {
		errs.Add("flowise.timeout", fmt.Sprintf("must be positive, got %v", c.Flowise.Timeout), "")
	}
	if c.Flowise.RetryAttempts < 0 {
		errs.Add("flowise.retry_attempts", fmt.Sprintf("must be non-negative, got %d", c.Flowise.RetryAttempts), "")
	}
	if c.Flowise.BaseURL != "" && !strings.HasPrefix(c.Flowise.BaseURL, "http://") && !strings.HasPrefix(c.Flowise.BaseURL, "https://") {
		errs.Add("flowise.base_url", fmt.Sprintf("must be an http(s) URL, got %q", c.Flowise.BaseURL), "")
	}
	if c.MCP.CallsPerMinute < 0 {
		errs.Add("mcp.calls_per_minute", fmt.Sprintf("must be non-negative, got %d", c.MCP.CallsPerMinute), "")
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, prov := range c.Providers {
		field := fmt.Sprintf("providers[%d]", i)
		if prov.ID == "" {
			errs.Add(field+".id", "provider id is required", "")
			continue
		}
		if seen[prov.ID] {
			errs.Add(field+".id", fmt.Sprintf("duplicate provider id %q", prov.ID), "")
		}
		seen[prov.ID] = true
		if prov.IsActive && len(prov.Models) == 0 {
			errs.Add(field+".models", fmt.Sprintf("active provider %q lists no models", prov.ID), "")
		}
	}
	if c.DefaultProvider != "" && len(c.Providers) > 0 && !seen[c.DefaultProvider] {
		errs.Add("default_provider", fmt.Sprintf("%q not found in configured providers", c.DefaultProvider),
			"add the provider under providers or clear default_provider")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// PlaintextKeys returns the providers whose API key is written literally
// in the file instead of as an environment or secret reference. raw is the
// provider list as read, before expansion.
func PlaintextKeys(raw []llm.Provider) []string {
	var ids []string
	for _, p := range raw {
		if p.APIKey != "" && !envReference.MatchString(p.APIKey) && !strings.HasPrefix(p.APIKey, secrets.ReferencePrefix) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
