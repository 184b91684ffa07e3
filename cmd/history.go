package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/KaramelBytes/pandacode-cli/internal/history"
	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear recorded query results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded results, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		entries := history.Open(c.DataDir, c.HistoryLimit, logger).List()
		out := cmd.OutOrStdout()
		if historyJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history")
			return nil
		}
		for i, e := range entries {
			line := fmt.Sprintf("%2d. %s  [%s]  %s", i+1, e.Timestamp.Format("2006-01-02 15:04:05"), e.Model, e.Query)
			if e.Chart != "" {
				line += "  chart=" + e.Chart
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded results",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := history.Open(c.DataDir, c.HistoryLimit, logger).Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ History cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "print entries as JSON")
}
