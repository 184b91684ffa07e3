package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	cfgpkg "github.com/KaramelBytes/pandacode-cli/internal/config"
	"github.com/KaramelBytes/pandacode-cli/internal/history"
	"github.com/KaramelBytes/pandacode-cli/internal/runner"
	"github.com/spf13/cobra"
)

var (
	qModel      string
	qPreference string
	qAPIKey     string
	qAPIBase    string
	qNoExec     bool
	qPretty     bool
	qTimeoutSec int
	qSave       bool
)

var queryCmd = &cobra.Command{
	Use:   "query <query> [file_path]",
	Short: "Generate pandas code for a question about a dataset and print a JSON result",
	Long: `Generate pandas code for a natural-language question.

file_path may be any supported format; "none" (the default) uses a built-in
sample dataset. The command always prints exactly one JSON object on stdout and
exits 0, even when the result carries an error.`,
	Example: `  pandacode query "total sales by category" sales.csv
  pandacode query "plot price against sales" none --preference standard_pandas
  pandacode query "average price" data.parquet --model-name deepseek-r1 --pretty`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if c == nil {
			// Report missing credentials through the JSON result.
			c = &cfgpkg.Global{}
		}
		if cmd.Flags().Changed("timeout-sec") {
			c.RequestTimeoutSec = qTimeoutSec
		}
		path := "none"
		if len(args) == 2 {
			path = args[1]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		start := time.Now()
		res := runner.New(c, logger).Run(ctx, runner.Params{
			Query:      args[0],
			FilePath:   path,
			Preference: qPreference,
			APIKey:     qAPIKey,
			APIBaseURL: qAPIBase,
			Model:      qModel,
			NoExec:     qNoExec,
		})
		logger.Debug("query finished", "ok", res.OK(), "kind", res.ErrorKind, "elapsed", time.Since(start))

		if res.OK() && qSave && c.DataDir != "" {
			if err := history.Open(c.DataDir, c.HistoryLimit, logger).Add(res); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
			}
		}
		b, err := res.Marshal(qPretty)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&qModel, "model-name", "", "model id (overrides DEEPSEEK default)")
	queryCmd.Flags().StringVar(&qPreference, "preference", "default", "code style: default or standard_pandas")
	queryCmd.Flags().StringVar(&qAPIKey, "api-key", "", "API key (overrides "+cfgpkg.EnvAPIKey+")")
	queryCmd.Flags().StringVar(&qAPIBase, "api-base-url", "", "API base URL (overrides "+cfgpkg.EnvAPIBase+")")
	queryCmd.Flags().BoolVar(&qNoExec, "no-exec", false, "do not run the generated code")
	queryCmd.Flags().BoolVar(&qPretty, "pretty", false, "indent the JSON output")
	queryCmd.Flags().IntVar(&qTimeoutSec, "timeout-sec", 0, "overall request timeout in seconds (0 = none)")
	queryCmd.Flags().BoolVar(&qSave, "save", false, "record a successful result in the history file")
}
