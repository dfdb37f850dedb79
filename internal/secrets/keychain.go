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
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeychainBackendPriority is the priority for the OS keychain.
	KeychainBackendPriority = 50

	keychainService = "flowkit"
)

// KeychainBackend stores secrets in the system keychain.
type KeychainBackend struct {
	available bool
}

// NewKeychainBackend probes the keychain and returns a backend. A locked
// or missing keyring service yields an unavailable backend.
func NewKeychainBackend() *KeychainBackend {
	_, err := keyring.Get(keychainService, "__flowkit_probe__")
	return &KeychainBackend{available: err == nil || errors.Is(err, keyring.ErrNotFound)}
}

func (k *KeychainBackend) Name() string { return "keychain" }

func (k *KeychainBackend) Get(_ context.Context, key string) (string, error) {
	if !k.available {
		return "", fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}
	v, err := keyring.Get(keychainService, key)
	if err != nil {
		return "", keychainError(key, err)
	}
	return v, nil
}

func (k *KeychainBackend) Set(_ context.Context, key, value string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}
	if err := keyring.Set(keychainService, key, value); err != nil {
		return keychainError(key, err)
	}
	return nil
}

func (k *KeychainBackend) Delete(_ context.Context, key string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}
	if err := keyring.Delete(keychainService, key); err != nil {
		return keychainError(key, err)
	}
	return nil
}

func (k *KeychainBackend) Available() bool { return k.available }
func (k *KeychainBackend) Priority() int   { return KeychainBackendPriority }

func keychainError(key string, err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"locked", "cannot access", "permission denied", "secret service", "dbus", "user canceled"} {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %s", ErrBackendUnavailable, err.Error())
		}
	}
	return fmt.Errorf("keychain error: %w", err)
}
