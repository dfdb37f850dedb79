package secrets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tombee/flowkit/pkg/llm"
)

// FlowiseKey is the secret holding the Flowise API key.
const FlowiseKey = "flowise/api_key"

// ReferencePrefix marks a config value that names a secret.
const ReferencePrefix = "secret:"

// ProviderKey returns the secret key for a provider's API key.
func ProviderKey(providerID string) string {
	return "providers/" + providerID + "/api_key"
}

// Resolver queries available backends in descending priority.
type Resolver struct {
	backends []Backend
}

// NewResolver drops unavailable backends and orders the rest.
func NewResolver(backends ...Backend) *Resolver {
	r := &Resolver{}
	for _, b := range backends {
		if b != nil && b.Available() {
			r.backends = append(r.backends, b)
		}
	}
	sort.SliceStable(r.backends, func(i, j int) bool {
		return r.backends[i].Priority() > r.backends[j].Priority()
	})
	return r
}

// Backends returns the names of the active backends in query order.
func (r *Resolver) Backends() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Get returns the first value found. A backend failure other than
// not-found is reported if no backend has the key.
func (r *Resolver) Get(ctx context.Context, key string) (string, error) {
	var lastErr error
	for _, b := range r.backends {
		v, err := b.Get(ctx, key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", key, lastErr)
	}
	return "", fmt.Errorf("%w: %q", ErrSecretNotFound, key)
}

// Set writes to the named backend, or the highest-priority writable one
// when backend is empty.
func (r *Resolver) Set(ctx context.Context, key, value, backend string) error {
	for _, b := range r.backends {
		if backend != "" && b.Name() != backend {
			continue
		}
		err := b.Set(ctx, key, value)
		if errors.Is(err, ErrReadOnlyBackend) && backend == "" {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to set secret in %s: %w", b.Name(), err)
		}
		return nil
	}
	if backend != "" {
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, backend)
	}
	return fmt.Errorf("%w: no writable backend", ErrBackendUnavailable)
}

// Delete removes key from every writable backend that holds it.
func (r *Resolver) Delete(ctx context.Context, key string) error {
	deleted := false
	for _, b := range r.backends {
		err := b.Delete(ctx, key)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrReadOnlyBackend), errors.Is(err, ErrSecretNotFound):
		default:
			return fmt.Errorf("failed to delete secret from %s: %w", b.Name(), err)
		}
	}
	if !deleted {
		return fmt.Errorf("%w: %q", ErrSecretNotFound, key)
	}
	return nil
}

// ResolveProviders fills provider API keys. A "secret:<key>" value is
// replaced by that secret; an empty key is looked up under
// ProviderKey(id). Keyless local providers are left alone.
func (r *Resolver) ResolveProviders(ctx context.Context, providers []llm.Provider) ([]llm.Provider, error) {
	out := append([]llm.Provider(nil), providers...)
	for i := range out {
		p := &out[i]
		switch {
		case strings.HasPrefix(p.APIKey, ReferencePrefix):
			v, err := r.Get(ctx, strings.TrimPrefix(p.APIKey, ReferencePrefix))
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", p.ID, err)
			}
			p.APIKey = v
		case p.APIKey == "":
			if _, local := p.Credentials().(llm.LocalCredentials); local {
				continue
			}
			if v, err := r.Get(ctx, ProviderKey(p.ID)); err == nil {
				p.APIKey = v
			}
		}
	}
	return out, nil
}
