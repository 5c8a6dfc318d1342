package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wdm0006/gapfill/pkg/analyze"
	j "github.com/wdm0006/gapfill/pkg/janitor"
	"github.com/wdm0006/gapfill/pkg/transform/impute"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// IndicatorSuffix is appended to a column name to form its missing indicator.
const IndicatorSuffix = "_was_missing"

type Options struct {
	// CreateMissingIndicators adds a bool <col>_was_missing column for every
	// analyzed column, taken from the null pattern before any change.
	CreateMissingIndicators bool
	Neighbors               int
	// DropColumnPct is the missing percentage above which a drop_or_flag
	// column is removed rather than flagged. 0 drops every such column with
	// a gap; start from DefaultOptions for the usual 70.
	DropColumnPct float64
	// InputFile is copied into the log.
	InputFile string
}

func DefaultOptions() Options {
	return Options{Neighbors: impute.DefaultNeighbors, DropColumnPct: 70}
}

// Executor applies an analysis report to a frame.
type Executor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger}
}

// Execute returns an imputed copy of f; f itself is never modified. Column
// failures are recorded in the log and never abort the run. The error result
// is reserved for missing inputs and cancellation.
func (e *Executor) Execute(ctx context.Context, f *j.Frame, r *analyze.Report, opt Options) (*j.Frame, *Log, error) {
	if f == nil || r == nil {
		return nil, nil, errors.New("executor: nil frame or report")
	}
	if opt.Neighbors <= 0 {
		opt.Neighbors = impute.DefaultNeighbors
	}
	out := f.Clone()
	log := &Log{InputFile: opt.InputFile, OriginalRows: f.Rows(), Columns: map[string]*Entry{}}
	var warnings error
	warn := func(col string, err error) {
		warnings = multierr.Append(warnings, fmt.Errorf("%s: %w", col, err))
		e.logger.Warn("column skipped", zap.String("column", col), zap.Error(err))
	}

	order := processingOrder(f, r)
	if opt.CreateMissingIndicators {
		for _, name := range order {
			col, ok := f.ColumnByName(name)
			if !ok {
				continue
			}
			if err := out.AddColumn(indicator(col)); err != nil {
				warn(name, fmt.Errorf("missing indicator: %w", err))
			}
		}
	}

	rowMask := make([]bool, out.Rows())
	var dropCols, knnCols []string
	steps := j.NewPipeline()
	stepCol := map[j.Transform]string{}

	for _, name := range order {
		ca := r.Columns[name]
		entry := log.entry(name, &Entry{
			Method:        ca.Strategy.Method,
			MissingBefore: ca.MissingCount,
			Reasoning:     ca.Strategy.Reasoning,
		})
		col, ok := out.ColumnByName(name)
		if !ok {
			entry.Action = "Skipped: column not found"
			warn(name, errors.New("column not found in data"))
			continue
		}
		base, value, hasValue := ca.Strategy.Method.Split()
		switch base {
		case analyze.MethodDropOrFlag:
			if ca.MissingPercentage > opt.DropColumnPct {
				dropCols = append(dropCols, name)
				entry.Action = fmt.Sprintf("Dropped column (%.1f%% missing)", ca.MissingPercentage)
			} else {
				entry.Action = fmt.Sprintf("Flagged for review (%.1f%% missing)", ca.MissingPercentage)
			}
		case analyze.MethodDropRows:
			for i := 0; i < col.Len(); i++ {
				rowMask[i] = rowMask[i] || col.IsNull(i)
			}
			entry.Action = "Marked rows for deletion"
		case analyze.MethodKNN:
			knnCols = append(knnCols, name)
			entry.Action = "Queued for KNN imputation"
		case analyze.MethodConstant:
			if !hasValue {
				value = analyze.DefaultConstant
				entry.Action = fmt.Sprintf("Imputed using %s", base)
			} else {
				entry.Action = fmt.Sprintf("Filled with constant: %s", value)
			}
			t := &impute.Constant{Column: name, Value: value}
			steps.Add(t)
			stepCol[t] = name
		default:
			t := fillTransform(base, name)
			if t == nil {
				entry.Action = fmt.Sprintf("Skipped: unknown method %q", string(ca.Strategy.Method))
				warn(name, fmt.Errorf("unknown method %q", string(ca.Strategy.Method)))
				continue
			}
			entry.Action = fmt.Sprintf("Imputed using %s", base)
			steps.Add(t)
			stepCol[t] = name
		}
		e.logger.Debug("column planned", zap.String("column", name), zap.String("method", string(ca.Strategy.Method)))
	}

	failed := map[string]bool{}
	steps.ContinueOnError(func(t j.Transform, err error) {
		name := stepCol[t]
		failed[name] = true
		log.Columns[name].Action = fmt.Sprintf("Skipped: %v", err)
		warn(name, err)
	})
	if _, err := steps.Run(ctx, out); err != nil {
		return nil, nil, err
	}
	for _, name := range stepCol {
		if failed[name] {
			continue
		}
		col, _ := out.ColumnByName(name)
		after := j.NullCount(col)
		log.Columns[name].MissingAfter = &after
	}

	if len(knnCols) > 0 {
		if err := e.runKNN(ctx, out, knnCols, opt.Neighbors, log, warn); err != nil {
			return nil, nil, err
		}
	}

	log.ColumnsDropped = out.DropColumns(dropCols...)
	dropped := 0
	for _, m := range rowMask {
		if m {
			dropped++
		}
	}
	if dropped > 0 {
		out, _ = out.DropRows(rowMask)
	}
	log.FinalRows = out.Rows()
	log.RowsDropped = log.OriginalRows - log.FinalRows
	for _, entry := range log.Columns {
		if entry.MissingAfter != nil {
			log.ColumnsImputed++
		}
	}
	for _, err := range multierr.Errors(warnings) {
		log.Warnings = append(log.Warnings, err.Error())
	}
	e.logger.Info("imputation finished",
		zap.Int("original_rows", log.OriginalRows),
		zap.Int("final_rows", log.FinalRows),
		zap.Int("columns_imputed", log.ColumnsImputed),
		zap.Int("columns_dropped", log.ColumnsDropped),
		zap.Int("warnings", len(log.Warnings)))
	return out, log, nil
}

func (e *Executor) runKNN(ctx context.Context, f *j.Frame, cols []string, k int, log *Log, warn func(string, error)) error {
	numeric := impute.NumericColumns(f, cols)
	isNumeric := map[string]bool{}
	for _, name := range numeric {
		isNumeric[name] = true
	}
	for _, name := range cols {
		if !isNumeric[name] {
			log.Columns[name].Action = "Skipped KNN imputation (non-numeric column)"
			warn(name, fmt.Errorf("knn: %w", impute.ErrNotNumeric))
		}
	}
	if len(numeric) == 0 {
		return nil
	}
	e.logger.Info("running KNN imputation", zap.Strings("columns", numeric), zap.Int("neighbors", k))
	_, err := (&impute.KNN{Columns: numeric, Neighbors: k}).Apply(ctx, f)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, name := range numeric {
			log.Columns[name].Action = fmt.Sprintf("Skipped: %v", err)
			warn(name, err)
		}
		return nil
	}
	for _, name := range numeric {
		col, _ := f.ColumnByName(name)
		after := j.NullCount(col)
		log.Columns[name].Action = "Imputed using KNN"
		log.Columns[name].MissingAfter = &after
	}
	return nil
}

// fillTransform maps a per-column substitution method to its transform, or
// nil when the method is not one.
func fillTransform(m analyze.Method, col string) j.Transform {
	switch m {
	case analyze.MethodMean:
		return &impute.Mean{Column: col}
	case analyze.MethodMedian:
		return &impute.Median{Column: col}
	case analyze.MethodMode, analyze.MethodMostFrequent:
		return &impute.Mode{Column: col}
	case analyze.MethodForwardFill:
		return &impute.ForwardFill{Column: col}
	case analyze.MethodBackwardFill:
		return &impute.BackwardFill{Column: col}
	case analyze.MethodInterpolate:
		return &impute.Interpolate{Column: col}
	}
	return nil
}

// processingOrder lists report columns in frame order, followed by report
// columns the frame lacks, sorted.
func processingOrder(f *j.Frame, r *analyze.Report) []string {
	order := make([]string, 0, len(r.Columns))
	seen := map[string]bool{}
	for _, c := range f.Columns() {
		if _, ok := r.Columns[c.Name()]; ok {
			order = append(order, c.Name())
			seen[c.Name()] = true
		}
	}
	var rest []string
	for name := range r.Columns {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func indicator(c j.Column) j.Column {
	ind := j.NewBoolColumn(c.Name()+IndicatorSuffix, c.Len())
	for i := 0; i < c.Len(); i++ {
		ind.Set(i, c.IsNull(i))
	}
	return ind
}
