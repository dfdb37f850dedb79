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

package completion

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/pkg/catalog"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
)

// CompleteProviderIDs completes the ids of configured providers.
func CompleteProviderIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		cfg, err := LoadConfigForCompletion()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ids := make([]string, 0, len(cfg.Providers))
		for _, p := range cfg.Providers {
			ids = append(ids, p.ID)
		}
		sort.Strings(ids)
		return ids, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteModelIDs completes built-in model ids, described by display name.
func CompleteModelIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, m := range llm.BuiltinModels() {
			out = append(out, m.ID+"\t"+m.DisplayName)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteCategories completes node catalog category names.
func CompleteCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		c, err := catalog.Default()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.Categories(), cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteLevels completes the low|medium|high values of --budget and --load.
func CompleteLevels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"low", "medium", "high"}, cobra.ShellCompDirectiveNoFileComp
}

// CompletePerformance completes --performance values.
func CompletePerformance(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(llm.PreferSpeed) + "\tFavor fast models",
		string(llm.PreferQuality) + "\tFavor the strongest models",
		string(llm.PreferBalanced) + "\tTrade speed against quality",
	}, cobra.ShellCompDirectiveNoFileComp
}

// CompleteSecretsBackend completes --backend values of secrets set.
func CompleteSecretsBackend(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"keychain\tSystem keychain",
		"file\tEncrypted file storage",
	}, cobra.ShellCompDirectiveNoFileComp
}

// CompleteSetPairs completes "<node-id>.<key>=" for modify --set, using
// the graph named by the first argument.
func CompleteSetPairs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		g, err := workflow.ParseGraph(data)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		registry, err := llm.NewRegistry()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		m := modifier.New(registry)

		var out []string
		for _, n := range g.Nodes {
			if !strings.HasPrefix(n.ID+".", toComplete) && !strings.HasPrefix(toComplete, n.ID+".") {
				continue
			}
			for _, spec := range m.AvailableModifications(n) {
				out = append(out, n.ID+"."+spec.Name+"=")
			}
		}
		return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	})
}
