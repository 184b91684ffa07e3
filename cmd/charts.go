package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/KaramelBytes/pandacode-cli/internal/packager"
	"github.com/spf13/cobra"
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Inspect captured charts",
}

var chartsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the path of the most recent chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		name, err := packager.Latest(c.ChartsDir)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no charts found in %s", c.ChartsDir)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(c.ChartsDir, name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartsCmd.AddCommand(chartsLatestCmd)
}
