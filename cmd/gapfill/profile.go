package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wdm0006/gapfill/pkg/profile"
)

func newProfileCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "profile <input-table>",
		Short: "Profile every column: counts, missing values, statistics and top values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.readTable(args[0])
			if err != nil {
				return err
			}
			ps := profile.Frame(f, a.cfg.TopValues)
			out := cmd.OutOrStdout()
			switch format {
			case "text":
				fmt.Fprintf(out, "Rows: %d, Columns: %d\n", f.Rows(), f.Cols())
				_, err = io.WriteString(out, profile.Text(ps))
				return err
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(profile.JSON(f.Rows(), ps))
			default:
				return fmt.Errorf("unknown format %q (use text or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "stdout format: text or json")
	return cmd
}
