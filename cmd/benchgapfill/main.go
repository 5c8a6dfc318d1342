package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wdm0006/gapfill/pkg/analyze"
	"github.com/wdm0006/gapfill/pkg/executor"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

type genOptions struct {
	rows, floatCols, intCols, stringCols int
	missing                              float64
	seed                                 int64
}

// generate builds a frame with independent uniformly missing cells. String
// columns draw from eight labels so they classify as categorical.
func generate(o genOptions) (*j.Frame, error) {
	rnd := rand.New(rand.NewSource(o.seed))
	var cols []j.Column
	for c := 0; c < o.floatCols; c++ {
		col := j.NewFloatColumn(fmt.Sprintf("f%d", c), o.rows)
		for i := 0; i < o.rows; i++ {
			if rnd.Float64() < o.missing {
				col.SetNull(i)
				continue
			}
			col.Set(i, rnd.NormFloat64()*10+50)
		}
		cols = append(cols, col)
	}
	for c := 0; c < o.intCols; c++ {
		col := j.NewIntColumn(fmt.Sprintf("i%d", c), o.rows)
		for i := 0; i < o.rows; i++ {
			if rnd.Float64() < o.missing {
				col.SetNull(i)
				continue
			}
			col.Set(i, int64(rnd.ExpFloat64()*100))
		}
		cols = append(cols, col)
	}
	for c := 0; c < o.stringCols; c++ {
		col := j.NewStringColumn(fmt.Sprintf("s%d", c), o.rows)
		for i := 0; i < o.rows; i++ {
			if rnd.Float64() < o.missing {
				col.SetNull(i)
				continue
			}
			col.Set(i, fmt.Sprintf("label-%d", rnd.Intn(8)))
		}
		cols = append(cols, col)
	}
	return j.FromColumns(cols...)
}

func main() {
	var (
		o       genOptions
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:           "benchgapfill",
		Short:         "Time analysis and imputation of a synthetic table",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := generate(o)
			if err != nil {
				return err
			}
			runtime.GC()
			var msBefore, msAfter runtime.MemStats
			runtime.ReadMemStats(&msBefore)

			start := time.Now()
			r := analyze.Analyze(f, analyze.DefaultOptions())
			analyzed := time.Since(start)
			_, log, err := executor.New(zap.NewNop()).Execute(context.Background(), f, r, executor.DefaultOptions())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			runtime.ReadMemStats(&msAfter)

			summary := map[string]any{
				"rows":                  o.rows,
				"analyze_ms":            analyzed.Milliseconds(),
				"elapsed_ms":            elapsed.Milliseconds(),
				"rows_per_sec":          float64(o.rows) / elapsed.Seconds(),
				"columns_imputed":       log.ColumnsImputed,
				"rows_dropped":          log.RowsDropped,
				"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
				"gc_num":                msAfter.NumGC - msBefore.NumGC,
				"cols":                  map[string]int{"float": o.floatCols, "int": o.intCols, "string": o.stringCols},
				"missing_prob":          o.missing,
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				b, _ := json.MarshalIndent(summary, "", "  ")
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintf(out, "Rows: %d\n", o.rows)
			fmt.Fprintf(out, "Analyze: %s\n", analyzed)
			fmt.Fprintf(out, "Elapsed: %s\n", elapsed)
			fmt.Fprintf(out, "Throughput: %.0f rows/s\n", float64(o.rows)/elapsed.Seconds())
			fmt.Fprintf(out, "Columns imputed: %d\n", log.ColumnsImputed)
			fmt.Fprintf(out, "Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
			fmt.Fprintf(out, "GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&o.rows, "rows", 200_000, "rows to generate")
	fl.IntVar(&o.floatCols, "float-cols", 4, "number of float columns")
	fl.IntVar(&o.intCols, "int-cols", 2, "number of int columns")
	fl.IntVar(&o.stringCols, "string-cols", 2, "number of string columns")
	fl.Float64Var(&o.missing, "missing", 0.05, "probability of a missing cell")
	fl.Int64Var(&o.seed, "seed", 42, "random seed")
	fl.BoolVar(&jsonOut, "json", false, "emit JSON summary")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}
