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

// Package catalog indexes the Flowise node types flowkit knows about.
//
// A Catalog is immutable once loaded. The built-in set ships embedded in
// the binary (Default); deployments can replace or extend it with YAML
// files (LoadFile, LoadGlob).
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/tombee/flowkit/pkg/errors"
)

//go:embed nodes.yaml
var builtinNodes []byte

// ErrUnavailable marks any failure to read or parse a catalog source.
// Callers should degrade to Empty() rather than abort.
var ErrUnavailable = errors.New("catalog unavailable")

// NodeDescriptor describes one Flowise node type.
type NodeDescriptor struct {
	Category        string `yaml:"category" json:"category"`
	Label           string `yaml:"label" json:"label"`
	Description     string `yaml:"description" json:"description"`
	PathID          string `yaml:"pathId" json:"pathId"`
	InputSignature  string `yaml:"inputSignature" json:"inputSignature"`
	OutputSignature string `yaml:"outputSignature" json:"outputSignature"`
}

// Snapshot is the loaded catalog as a plain value.
type Snapshot struct {
	Nodes      []NodeDescriptor `json:"nodes"`
	Categories []string         `json:"categories"`
	TotalCount int              `json:"totalCount"`
}

type file struct {
	Version string           `yaml:"version"`
	Nodes   []NodeDescriptor `yaml:"nodes"`
}

// entry caches case-folded fields for matching.
type entry struct {
	NodeDescriptor
	category string
	label    string
	desc     string
}

// Catalog is an immutable, indexed set of node descriptors.
// It is safe for concurrent use.
type Catalog struct {
	entries    []entry
	byPath     map[string]int
	categories []string
}

// Empty returns a catalog with no nodes.
func Empty() *Catalog {
	return &Catalog{byPath: map[string]int{}}
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return parse("builtin", builtinNodes)
}

// Load reads a catalog document from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return parse("reader", data)
}

// LoadFile reads a catalog document from path.
func LoadFile(path string) (*Catalog, error) {
	return LoadFiles(path)
}

// LoadGlob loads every file matching a doublestar pattern (for example
// "catalogs/**/*.yaml") as one catalog. Files are merged in lexical order.
// A pattern that matches nothing is an error.
func LoadGlob(pattern string) (*Catalog, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %w", ErrUnavailable, pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", ErrUnavailable, pattern)
	}
	sort.Strings(matches)
	return LoadFiles(matches...)
}

// LoadFiles merges several catalog documents. A pathId defined in more
// than one file is an error.
func LoadFiles(paths ...string) (*Catalog, error) {
	var nodes []NodeDescriptor
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		f, err := decode(p, data)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, f.Nodes...)
	}
	return New(nodes)
}

// Extend returns a new catalog holding c's nodes followed by extra.
func (c *Catalog) Extend(extra []NodeDescriptor) (*Catalog, error) {
	nodes := make([]NodeDescriptor, 0, len(c.entries)+len(extra))
	for _, e := range c.entries {
		nodes = append(nodes, e.NodeDescriptor)
	}
	return New(append(nodes, extra...))
}

// New builds a catalog from descriptors. Every descriptor needs a pathId
// and a category, and pathIds must be unique.
func New(nodes []NodeDescriptor) (*Catalog, error) {
	fold := cases.Fold()
	c := &Catalog{
		entries: make([]entry, 0, len(nodes)),
		byPath:  make(map[string]int, len(nodes)),
	}
	seen := make(map[string]bool)
	for i, n := range nodes {
		if n.PathID == "" {
			return nil, &errors.ValidationError{
				Field:   fmt.Sprintf("nodes[%d].pathId", i),
				Message: "pathId is required",
			}
		}
		if n.Category == "" {
			return nil, &errors.ValidationError{
				Field:   fmt.Sprintf("nodes[%d].category", i),
				Message: fmt.Sprintf("node %s has no category", n.PathID),
			}
		}
		if _, dup := c.byPath[n.PathID]; dup {
			return nil, &errors.ValidationError{
				Field:      fmt.Sprintf("nodes[%d].pathId", i),
				Message:    fmt.Sprintf("duplicate pathId %q", n.PathID),
				Suggestion: "each node type may be declared once across all catalog files",
			}
		}
		c.byPath[n.PathID] = len(c.entries)
		c.entries = append(c.entries, entry{
			NodeDescriptor: n,
			category:       fold.String(n.Category),
			label:          fold.String(n.Label),
			desc:           fold.String(n.Description),
		})
		if !seen[n.Category] {
			seen[n.Category] = true
			c.categories = append(c.categories, n.Category)
		}
	}
	sort.Strings(c.categories)
	return c, nil
}

func parse(source string, data []byte) (*Catalog, error) {
	f, err := decode(source, data)
	if err != nil {
		return nil, err
	}
	return New(f.Nodes)
}

func decode(source string, data []byte) (*file, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrUnavailable, source, err)
	}
	return &f, nil
}

// Snapshot returns the catalog contents with derived categories.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{
		Nodes:      c.Nodes(),
		Categories: c.Categories(),
		TotalCount: len(c.entries),
	}
}

// Nodes returns all descriptors in load order.
func (c *Catalog) Nodes() []NodeDescriptor {
	out := make([]NodeDescriptor, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.NodeDescriptor
	}
	return out
}

// Categories returns the sorted distinct categories.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Len returns the number of nodes.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Get returns the descriptor with the given pathId.
func (c *Catalog) Get(pathID string) (NodeDescriptor, error) {
	i, ok := c.byPath[pathID]
	if !ok {
		return NodeDescriptor{}, &errors.NotFoundError{Resource: "node type", ID: pathID}
	}
	return c.entries[i].NodeDescriptor, nil
}
