package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/spf13/cobra"
)

var formatsJSON bool

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported dataset formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		formats := frame.SupportedFormats()
		if formatsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(formats)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(formats, "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
	formatsCmd.Flags().BoolVar(&formatsJSON, "json", false, "print as a JSON array")
}
