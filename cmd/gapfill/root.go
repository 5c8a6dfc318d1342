package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wdm0006/gapfill/pkg/config"
	"github.com/wdm0006/gapfill/pkg/io/tableio"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

var version = "0.1.0-dev"

// app holds global flags and the state built from them before a
// subcommand runs.
type app struct {
	cfgFile   string
	debug     bool
	delimiter string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gapfill",
		Short: "Analyze and impute missing values in tabular data",
		Long: `gapfill profiles every column of a table that has missing values, picks an
imputation strategy for it, and applies those strategies to produce a
complete table plus a log of what was done.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file, yaml or toml (default ./gapfill.yaml when present)")
	pf.BoolVar(&a.debug, "debug", false, "enable debug logging")
	pf.StringVar(&a.delimiter, "delimiter", "", `CSV delimiter, "\t" for tab (default: sniffed)`)

	root.AddCommand(newAnalyzeCmd(a), newImputeCmd(a), newProfileCmd(a), newConfigCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if a.debug {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	a.logger = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(cmd.ErrOrStderr()), level))

	c, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("delimiter") {
		c.Delimiter = a.delimiter
		if err := c.Validate(); err != nil {
			return err
		}
	}
	a.cfg = c
	a.logger.Debug("configuration loaded", zap.String("file", a.cfgFile), zap.Any("config", c))
	return nil
}

func (a *app) tableOptions() tableio.Options {
	return tableio.Options{Delimiter: a.cfg.DelimiterRune(), SampleRows: a.cfg.SampleRows}
}

// readTable loads path, logging any records the reader had to repair.
func (a *app) readTable(path string) (*j.Frame, error) {
	if path != "-" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("file not found: %s", path)
		}
	}
	f, warnings, err := tableio.Read(path, a.tableOptions())
	if err != nil {
		return nil, err
	}
	if warnings != "" {
		a.logger.Warn("input repaired", zap.String("file", path), zap.String("details", warnings))
	}
	a.logger.Debug("table loaded", zap.String("file", path), zap.Int("rows", f.Rows()), zap.Int("columns", f.Cols()))
	return f, nil
}
