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

package shared

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tombee/flowkit/internal/config"
	flowlog "github.com/tombee/flowkit/internal/log"
	secretstore "github.com/tombee/flowkit/internal/secrets"
	"github.com/tombee/flowkit/internal/tracing"
	"github.com/tombee/flowkit/internal/workbench"
)

// SecretsFile is the encrypted secrets file name inside the config dir.
const SecretsFile = "secrets.enc"

// SecretBackends builds the secret backends commands resolve keys from.
// Tests replace it to keep the system keychain out of the way.
var SecretBackends = func() []secretstore.Backend {
	backends := []secretstore.Backend{secretstore.NewEnvBackend(), secretstore.NewKeychainBackend()}
	if dir, err := config.ConfigDir(); err == nil {
		backends = append(backends, secretstore.NewFileBackend(filepath.Join(dir, SecretsFile), ""))
	}
	return backends
}

// Env is what a command needs to run flowkit operations.
type Env struct {
	Config    *config.Config
	Logger    *slog.Logger
	Secrets   *secretstore.Resolver
	Workbench *workbench.Workbench

	tracing *tracing.Provider
}

// LoadConfig loads the --config file, or the default location when the
// flag is unset.
func LoadConfig() (*config.Config, error) {
	path := GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// NewLogger builds the CLI logger. --verbose lowers the level to debug
// and --quiet raises it to error.
func NewLogger(cfg *config.Config) *slog.Logger {
	lc := cfg.LoggerConfig()
	switch {
	case GetVerbose():
		lc.Level = "debug"
	case GetQuiet():
		lc.Level = "error"
	}
	return flowlog.New(lc)
}

// NewEnv loads configuration and builds the workbench. Callers must
// Close the returned Env.
func NewEnv(ctx context.Context) (*Env, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg)
	for _, id := range cfg.PlaintextKeyProviders() {
		logger.Warn("provider API key is stored in plaintext; use an env reference or 'flowkit secrets set'",
			slog.String(flowlog.ProviderKey, id))
	}

	env := &Env{
		Config:  cfg,
		Logger:  logger,
		Secrets: secretstore.NewResolver(SecretBackends()...),
	}

	opts := []workbench.Option{
		workbench.WithLogger(logger),
		workbench.WithSecrets(env.Secrets),
	}
	if exporter := GetTrace(); exporter != "" {
		tp, err := tracing.Setup(ctx, tracing.Config{
			Exporter:       exporter,
			Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:       os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
			Writer:         os.Stderr,
			ServiceVersion: version,
		})
		if err != nil {
			return nil, NewConfigError("failed to set up tracing", err)
		}
		env.tracing = tp
		opts = append(opts,
			workbench.WithTracerProvider(tp.TracerProvider()),
			workbench.WithMeterProvider(tp.MeterProvider()),
		)
	}

	env.Workbench, err = workbench.New(ctx, cfg, opts...)
	if err != nil {
		env.Close(ctx)
		return nil, err
	}
	for _, w := range env.Workbench.Warnings() {
		logger.Warn(w)
	}
	return env, nil
}

// Close flushes pending spans.
func (e *Env) Close(ctx context.Context) {
	if e.tracing == nil {
		return
	}
	if err := e.tracing.Shutdown(ctx); err != nil {
		e.Logger.Warn("failed to flush traces", flowlog.Error(err))
	}
}
