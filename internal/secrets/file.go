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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	// FileBackendPriority is the priority for the encrypted file.
	FileBackendPriority = 25

	// MasterKeyEnv holds the passphrase for the encrypted file.
	MasterKeyEnv = "FLOWKIT_MASTER_KEY"

	argon2Time        = 3
	argon2Memory      = 64 * 1024
	argon2Parallelism = 4
	argon2KeyLength   = 32
	saltSize          = 16
)

// FileBackend stores secrets in a JSON map encrypted with AES-256-GCM.
// The key is derived from the master passphrase with Argon2id and a
// fresh salt on every write.
type FileBackend struct {
	mu        sync.RWMutex
	path      string
	masterKey []byte
}

type sealedFile struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// NewFileBackend creates a backend at path. The master key is masterKey,
// else $FLOWKIT_MASTER_KEY, else master.key next to path. With none of
// those the backend is unavailable.
func NewFileBackend(path, masterKey string) *FileBackend {
	f := &FileBackend{path: path}
	switch {
	case masterKey != "":
		f.masterKey = []byte(masterKey)
	case os.Getenv(MasterKeyEnv) != "":
		f.masterKey = []byte(os.Getenv(MasterKeyEnv))
	default:
		keyPath := filepath.Join(filepath.Dir(path), "master.key")
		if err := checkPermissions(keyPath); err == nil {
			if key, err := os.ReadFile(keyPath); err == nil {
				f.masterKey = key
			}
		}
	}
	return f
}

func (f *FileBackend) Name() string    { return "file" }
func (f *FileBackend) Available() bool { return len(f.masterKey) > 0 && f.path != "" }
func (f *FileBackend) Priority() int   { return FileBackendPriority }

func (f *FileBackend) Get(_ context.Context, key string) (string, error) {
	if !f.Available() {
		return "", fmt.Errorf("%w: master key not available", ErrBackendUnavailable)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	m, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	return v, nil
}

func (f *FileBackend) Set(_ context.Context, key, value string) error {
	return f.update(func(m map[string]string) error {
		m[key] = value
		return nil
	})
}

func (f *FileBackend) Delete(_ context.Context, key string) error {
	return f.update(func(m map[string]string) error {
		if _, ok := m[key]; !ok {
			return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
		}
		delete(m, key)
		return nil
	})
}

func (f *FileBackend) update(fn func(map[string]string) error) error {
	if !f.Available() {
		return fmt.Errorf("%w: master key not available", ErrBackendUnavailable)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return f.save(m)
}

// load returns an empty map when the file does not exist yet.
func (f *FileBackend) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	var sealed sealedFile
	if err := json.Unmarshal(raw, &sealed); err != nil {
		return nil, fmt.Errorf("invalid secrets file: %w", err)
	}
	gcm, err := f.cipher(sealed.Salt)
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, sealed.Nonce, sealed.Data, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong master key or corrupted file): %w", err)
	}
	defer clear(plain)

	m := map[string]string{}
	if err := json.Unmarshal(plain, &m); err != nil {
		return nil, fmt.Errorf("invalid decrypted secrets: %w", err)
	}
	return m, nil
}

func (f *FileBackend) save(m map[string]string) error {
	plain, err := json.Marshal(m)
	if err != nil {
		return err
	}
	defer clear(plain)

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := f.cipher(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	out, err := json.Marshal(sealedFile{Salt: salt, Nonce: nonce, Data: gcm.Seal(nil, nonce, plain, nil)})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace secrets file: %w", err)
	}
	return nil
}

func (f *FileBackend) cipher(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(f.masterKey, salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLength)
	defer clear(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// checkPermissions rejects symlinks and files readable by group or others.
func checkPermissions(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return errors.New("master key file is a symlink")
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("master key file permissions too open (got %o, want 0600)", perm)
	}
	return nil
}
