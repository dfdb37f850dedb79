package completion

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/config"
)

// CheckFilePermissions reports whether path is missing or not readable by
// group and others.
func CheckFilePermissions(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Mode().Perm()&0o077 == 0
}

// LoadConfigForCompletion loads the configuration, skipping a config file
// that other users can read since it may hold API keys.
func LoadConfigForCompletion() (*config.Config, error) {
	path := shared.GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	if path != "" && !CheckFilePermissions(path) {
		return config.Load("")
	}
	return config.Load(path)
}

// SafeCompletionWrapper wraps a completion function with panic recovery.
// Returns empty completion list on panic or error.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}
