package completion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	maxFiles       = 100
	maxSearchDepth = 2
)

// documentPattern matches YAML and JSON files; JSON parses as YAML.
const documentPattern = "**/*.{yaml,yml,json}"

type document struct {
	path    string
	modTime int64
}

// CompleteGraphFiles completes workflow graph files: documents with a
// top-level "nodes" key.
func CompleteGraphFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeDocuments(func(doc map[string]any) bool {
		_, ok := doc["nodes"]
		return ok
	})
}

// CompleteAgentFiles completes agent definitions: documents with a "name"
// key that are not graphs.
func CompleteAgentFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeDocuments(func(doc map[string]any) bool {
		_, named := doc["name"]
		_, graph := doc["nodes"]
		return named && !graph
	})
}

func completeDocuments(match func(map[string]any) bool) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		docs, err := discover(".", maxSearchDepth, match)
		if err != nil || len(docs) == 0 {
			return nil, cobra.ShellCompDirectiveDefault
		}
		sort.Slice(docs, func(i, j int) bool {
			return docs[i].modTime > docs[j].modTime
		})
		if len(docs) > maxFiles {
			docs = docs[:maxFiles]
		}
		paths := make([]string, len(docs))
		for i, d := range docs {
			paths[i] = d.path
		}
		return paths, cobra.ShellCompDirectiveDefault
	})
}

// discover finds matching documents under root, at most maxDepth
// directories deep, skipping hidden directories and symlinks.
func discover(root string, maxDepth int, match func(map[string]any) bool) ([]document, error) {
	var docs []document
	err := doublestar.GlobWalk(os.DirFS(root), documentPattern, func(path string, d os.DirEntry) error {
		if strings.Count(path, "/") > maxDepth || hidden(path) {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		full := filepath.Join(root, filepath.FromSlash(path))
		if !matches(full, match) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		docs = append(docs, document{path: full, modTime: info.ModTime().Unix()})
		return nil
	})
	return docs, err
}

func hidden(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func matches(path string, match func(map[string]any) bool) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	return match(doc)
}
