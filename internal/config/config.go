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
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/httpclient"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow/generator"
	"github.com/tombee/flowkit/pkg/workflow/validator"
)

// Config is the complete flowkit configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Models    ModelsConfig    `yaml:"models"`
	Generator GeneratorConfig `yaml:"generator"`
	Validator ValidatorConfig `yaml:"validator"`
	Flowise   FlowiseConfig   `yaml:"flowise"`
	MCP       MCPConfig       `yaml:"mcp"`

	// DefaultProvider names the provider used when none is requested.
	// Environment: FLOWKIT_PROVIDER
	DefaultProvider string `yaml:"default_provider,omitempty"`

	Providers []llm.Provider `yaml:"providers,omitempty"`

	// plaintext lists providers whose key was written literally in the file.
	plaintext []string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error. Environment: LOG_LEVEL
	Level string `yaml:"level"`

	// Format is json or text. Environment: LOG_FORMAT
	Format string `yaml:"format"`

	// AddSource adds file:line to records. Environment: LOG_SOURCE
	AddSource bool `yaml:"add_source"`
}

// CatalogConfig locates node catalog files. With neither field set the
// embedded catalog is used.
type CatalogConfig struct {
	Path     string   `yaml:"path,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
}

// PricingConfig locates the pricing override file.
type PricingConfig struct {
	Path          string `yaml:"path,omitempty"`
	StalenessDays int    `yaml:"staleness_days,omitempty"`
}

// ModelsConfig tunes the model registry.
type ModelsConfig struct {
	Weights llm.ScoreWeights `yaml:"weights"`
}

// GeneratorConfig tunes graph generation.
type GeneratorConfig struct {
	Defaults generator.Defaults `yaml:"defaults"`

	// SearchAPIKey is placed on generated search tool nodes.
	// Environment: SERPAPI_API_KEY
	SearchAPIKey string `yaml:"search_api_key,omitempty"`
}

// ValidatorConfig tunes workflow validation.
type ValidatorConfig struct {
	Penalties validator.Penalties `yaml:"penalties"`
	MaxPaths  int                 `yaml:"max_paths"`
}

// FlowiseConfig points at a Flowise instance.
type FlowiseConfig struct {
	// BaseURL of the Flowise server. Environment: FLOWISE_BASE_URL
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey is sent as a bearer token. Environment: FLOWISE_API_KEY
	APIKey string `yaml:"api_key,omitempty"`

	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	// CallsPerMinute limits tool calls. 0 disables the limit.
	CallsPerMinute int `yaml:"calls_per_minute"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Models: ModelsConfig{
			Weights: llm.DefaultWeights(),
		},
		Generator: GeneratorConfig{
			Defaults: generator.DefaultDefaults(),
		},
		Validator: ValidatorConfig{
			Penalties: validator.DefaultPenalties(),
			MaxPaths:  validator.DefaultMaxPaths,
		},
		Flowise: FlowiseConfig{
			Timeout:       30 * time.Second,
			RetryAttempts: 3,
		},
		MCP: MCPConfig{
			CallsPerMinute: 120,
		},
	}
}

// Load reads configuration: defaults, then the file at configPath (if
// any), then environment overrides. The result is validated.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &errors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &errors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	c.plaintext = PlaintextKeys(c.Providers)
	return nil
}

// applyDefaults fills values a minimal file may have zeroed.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Models.Weights == (llm.ScoreWeights{}) {
		c.Models.Weights = def.Models.Weights
	}
	if c.Generator.Defaults.MaxTokens == 0 {
		c.Generator.Defaults.MaxTokens = def.Generator.Defaults.MaxTokens
	}
	if c.Generator.Defaults.ChunkSize == 0 {
		c.Generator.Defaults.ChunkSize = def.Generator.Defaults.ChunkSize
	}
	if c.Generator.Defaults.TopK == 0 {
		c.Generator.Defaults.TopK = def.Generator.Defaults.TopK
	}
	if c.Generator.Defaults.EmbeddingsModel == "" {
		c.Generator.Defaults.EmbeddingsModel = def.Generator.Defaults.EmbeddingsModel
	}
	if c.Validator.MaxPaths == 0 {
		c.Validator.MaxPaths = def.Validator.MaxPaths
	}
	if c.Flowise.Timeout == 0 {
		c.Flowise.Timeout = def.Flowise.Timeout
	}
	for i := range c.Providers {
		c.Providers[i].APIKey = os.ExpandEnv(c.Providers[i].APIKey)
	}
}

// vendorKeyEnv names the environment variable holding each vendor's key,
// in the order discovered providers are appended.
var vendorKeyEnv = []struct{ vendor, env string }{
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"google", "GOOGLE_API_KEY"},
	{"cohere", "COHERE_API_KEY"},
	{"meta", "META_API_KEY"},
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.ToLower(val) == "true"
	}

	if val := os.Getenv("FLOWKIT_PROVIDER"); val != "" {
		c.DefaultProvider = val
	}
	if val := os.Getenv("FLOWKIT_CATALOG"); val != "" {
		c.Catalog.Path = val
	}
	if val := os.Getenv("FLOWKIT_PRICING"); val != "" {
		c.Pricing.Path = val
	}
	if val := os.Getenv("SERPAPI_API_KEY"); val != "" && c.Generator.SearchAPIKey == "" {
		c.Generator.SearchAPIKey = val
	}

	if val := os.Getenv("FLOWISE_BASE_URL"); val != "" {
		c.Flowise.BaseURL = val
	}
	if val := os.Getenv("FLOWISE_API_KEY"); val != "" {
		c.Flowise.APIKey = val
	}
	if val := os.Getenv("FLOWISE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Flowise.Timeout = d
		}
	}
	if val := os.Getenv("FLOWKIT_MCP_CALLS_PER_MINUTE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MCP.CallsPerMinute = n
		}
	}

	// Vendor keys fill providers that have none, and add an active
	// provider for vendors that are not configured at all.
	for _, ve := range vendorKeyEnv {
		vendor := ve.vendor
		key := os.Getenv(ve.env)
		if key == "" {
			continue
		}
		found := false
		for i := range c.Providers {
			if c.Providers[i].Vendor() == vendor {
				found = true
				if c.Providers[i].APIKey == "" {
					c.Providers[i].APIKey = key
				}
			}
		}
		if !found {
			c.Providers = append(c.Providers, llm.Provider{
				ID:       vendor,
				APIKey:   key,
				Models:   defaultModels[vendor],
				IsActive: true,
			})
		}
	}
}

// defaultModels seeds providers discovered from the environment.
var defaultModels = map[string][]string{
	"openai":    {"gpt-4o", "gpt-4o-mini"},
	"anthropic": {"claude-3-5-sonnet", "claude-3-haiku"},
	"google":    {"gemini-1.5-pro", "gemini-1.5-flash"},
	"cohere":    {"command-r-plus"},
	"meta":      {"llama-3-70b"},
}

// LoggerConfig returns the logger configuration.
func (c *Config) LoggerConfig() *log.Config {
	lc := log.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = log.Format(c.Log.Format)
	lc.AddSource = c.Log.AddSource
	return lc
}

// PlaintextKeyProviders returns the ids of providers whose API key was
// stored in the config file as a literal value.
func (c *Config) PlaintextKeyProviders() []string {
	return append([]string(nil), c.plaintext...)
}

// ProviderSet builds the provider resolver from the configured providers.
func (c *Config) ProviderSet() *llm.ProviderSet {
	return llm.NewProviderSet(c.DefaultProvider, c.Providers...)
}

// HTTPClientConfig returns the client settings for Flowise calls.
func (c *Config) HTTPClientConfig() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.Flowise.Timeout
	hc.RetryAttempts = c.Flowise.RetryAttempts
	return hc
}
