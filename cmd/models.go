package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/pandacode-cli/internal/ai"
	"github.com/spf13/cobra"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the model catalog and which models may be used as defaults",
	Example: `  pandacode models
  pandacode models --json
  pandacode models sync --file ./models.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := ai.Catalog()
		keys := make([]string, 0, len(cat))
		for k := range cat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := cmd.OutOrStdout()
		if modelsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cat)
		}
		for _, k := range keys {
			mi := cat[k]
			mark := " "
			if mi.EnvDefault {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %-20s ctx=%-7d in=$%.5f/1K out=$%.5f/1K\n", mark, k, mi.ContextTokens, mi.InputPerK, mi.OutputPerK)
		}
		fmt.Fprintf(out, "\n* accepted as environment default: %s\n", strings.Join(ai.EnvDefaultModels(), ", "))
		return nil
	},
}

var syncPath string

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge model catalog/pricing from a JSON file for this invocation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPath == "" {
			return fmt.Errorf("--file is required")
		}
		m, err := ai.LoadCatalogFromJSON(syncPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		ai.MergeCatalog(m)
		fmt.Fprintf(cmd.OutOrStdout(), "Merged %d model(s) from %s\n", len(m), syncPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
	modelsCmd.AddCommand(modelsSyncCmd)
	modelsSyncCmd.Flags().StringVar(&syncPath, "file", "", "path to a JSON catalog")
}
