package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/gapfill/pkg/analyze"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "analyze <input-table> [output-json]",
		Short: "Report missing values and recommend an imputation strategy per column",
		Example: `  gapfill analyze data.csv
  gapfill analyze data.csv analysis.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.readTable(args[0])
			if err != nil {
				return err
			}
			r := analyze.Analyze(f, a.cfg.AnalyzeOptions(args[0]))
			out := cmd.OutOrStdout()
			switch format {
			case "text":
				err = r.WriteText(out)
			case "json":
				err = r.WriteJSON(out)
			default:
				return fmt.Errorf("unknown format %q (use text or json)", format)
			}
			if err != nil {
				return err
			}
			if len(args) > 1 {
				if err := analyze.SaveReport(r, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nAnalysis saved to: %s\n", args[1])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "stdout format: text or json")
	return cmd
}
