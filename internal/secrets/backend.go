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
	"errors"
)

var (
	// ErrSecretNotFound is returned when a key does not exist in a backend.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable is returned when a backend cannot be used here.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrReadOnlyBackend is returned by Set and Delete on read-only backends.
	ErrReadOnlyBackend = errors.New("backend is read-only")
)

// Backend stores secrets. Backends are queried by the Resolver in
// descending Priority order.
type Backend interface {
	// Name returns the backend identifier ("env", "keychain", "file").
	Name() string

	// Get returns ErrSecretNotFound if the key is not present.
	Get(ctx context.Context, key string) (string, error)

	// Set returns ErrReadOnlyBackend if writes are not supported.
	Set(ctx context.Context, key, value string) error

	Delete(ctx context.Context, key string) error

	// Available reports whether the backend works in this environment.
	Available() bool

	Priority() int
}
