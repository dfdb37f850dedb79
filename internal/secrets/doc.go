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

// Package secrets stores and resolves credentials that should not live
// in the config file: provider API keys and the Flowise API key.
//
// Secrets are read through a Resolver that queries backends in priority
// order:
//
//	env      - FLOWKIT_SECRET_<KEY> and vendor variables such as OPENAI_API_KEY
//	keychain - the OS keychain (macOS Keychain, Secret Service, Credential Manager)
//	file     - an AES-256-GCM encrypted file keyed by FLOWKIT_MASTER_KEY
//
// Keys are slash separated paths, for example "providers/openai/api_key".
// A config value of the form "secret:<key>" is replaced by the resolved
// secret when providers are loaded.
package secrets
