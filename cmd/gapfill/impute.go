package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wdm0006/gapfill/pkg/analyze"
	"github.com/wdm0006/gapfill/pkg/executor"
	"github.com/wdm0006/gapfill/pkg/io/tableio"
)

func newImputeCmd(a *app) *cobra.Command {
	var (
		indicators bool
		neighbors  int
	)
	cmd := &cobra.Command{
		Use:   "impute <input-table> [analysis-json] [output-table]",
		Short: "Apply recommended imputation strategies and write the completed table",
		Long: `Applies the strategies of an analysis file, or of a fresh analysis when no
file is given or it does not exist. The table is written to output-table
(default <input>_imputed.<ext>) and the imputation log to
<output>_report.json.`,
		Example: `  gapfill impute data.csv
  gapfill impute data.csv analysis.json data_imputed.csv`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := imputedPath(input)
			if len(args) > 2 {
				output = args[2]
			}
			if _, err := tableio.Format(output); err != nil {
				return err
			}
			f, err := a.readTable(input)
			if err != nil {
				return err
			}

			var r *analyze.Report
			if len(args) > 1 {
				if _, statErr := os.Stat(args[1]); statErr == nil {
					if r, err = analyze.LoadReport(args[1]); err != nil {
						return err
					}
				} else {
					a.logger.Warn("analysis file not found, analyzing input", zap.String("file", args[1]))
				}
			}
			if r == nil {
				r = analyze.Analyze(f, a.cfg.AnalyzeOptions(input))
			}

			opt := a.cfg.ExecutorOptions(input)
			if cmd.Flags().Changed("indicators") {
				opt.CreateMissingIndicators = indicators
			}
			if cmd.Flags().Changed("neighbors") {
				if neighbors < 1 {
					return fmt.Errorf("--neighbors must be >= 1, got %d", neighbors)
				}
				opt.Neighbors = neighbors
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Starting automatic imputation...")
			result, log, err := executor.New(a.logger).Execute(cmd.Context(), f, r, opt)
			if err != nil {
				return err
			}
			if err := tableio.Write(output, result, a.tableOptions()); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			log.OutputFile = output
			if err := log.WriteText(out); err != nil {
				return err
			}
			fmt.Fprintf(out, "Imputed data saved to: %s\n", output)

			report := reportPath(output)
			if err := log.SaveJSON(report); err != nil {
				return err
			}
			fmt.Fprintf(out, "Detailed report saved to: %s\n", report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&indicators, "indicators", false, "add a <col>_was_missing column per analyzed column")
	cmd.Flags().IntVar(&neighbors, "neighbors", 0, "neighbors used by knn imputation (default from config)")
	return cmd
}

// splitTablePath splits "dir/data.csv.gz" into "dir/data", ".csv" and ".gz".
func splitTablePath(path string) (stem, ext, gz string) {
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz = path[len(path)-3:]
		path = path[:len(path)-3]
	}
	ext = filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext, gz
}

// imputedPath is the default output for input. Workbooks are written as CSV.
func imputedPath(input string) string {
	stem, ext, gz := splitTablePath(input)
	if format, _ := tableio.Format(input); format == "xlsx" {
		ext, gz = ".csv", ""
	}
	return stem + "_imputed" + ext + gz
}

func reportPath(output string) string {
	stem, _, _ := splitTablePath(output)
	return stem + "_report.json"
}
