package cmd

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/pandacode-cli/internal/analysis"
	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/KaramelBytes/pandacode-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaSampleRows int
	anaGroupBy    string
	anaNoCorr     bool
	anaSheetName  string
	anaOutlierThr float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a dataset and print the Markdown summary the model sees",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := analysis.DefaultOptions()
		if anaSampleRows > 0 {
			opt.SampleRows = anaSampleRows
		}
		opt.GroupBy = anaGroupBy
		opt.Correlations = !anaNoCorr
		if cmd.Flags().Changed("outlier-threshold") {
			opt.OutlierThreshold = anaOutlierThr
		}
		var python string
		if cfg != nil {
			python = cfg.PythonPath
		}
		f, err := frame.Load(context.Background(), args[0], frame.Options{Sheet: anaSheetName, Python: python})
		if err != nil {
			return err
		}
		md := analysis.Profile(f, opt).Markdown()

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the summary to a file instead of stdout")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 0, "number of head rows to include (default 5)")
	analyzeCmd.Flags().StringVar(&anaGroupBy, "group-by", "", "categorical column to compute per-group means for")
	analyzeCmd.Flags().BoolVar(&anaNoCorr, "no-corr", false, "skip the correlation section")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "worksheet name for spreadsheet files (default first sheet)")
	analyzeCmd.Flags().Float64Var(&anaOutlierThr, "outlier-threshold", 0, "robust z-score threshold for outliers (0 disables)")
}
