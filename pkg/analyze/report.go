package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	j "github.com/wdm0006/gapfill/pkg/janitor"
	"github.com/wdm0006/gapfill/pkg/profile"
)

// NumericStatistics summarize the non-missing values of a numeric column.
type NumericStatistics struct {
	Mean   float64  `json:"mean"`
	Median float64  `json:"median"`
	Std    *float64 `json:"std"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
}

// CategoricalStatistics summarize a textual or boolean column.
type CategoricalStatistics struct {
	UniqueValues int            `json:"unique_values"`
	MostCommon   map[string]int `json:"most_common"`
}

// Statistics holds exactly one of the two variants; the JSON form is flat.
type Statistics struct {
	*NumericStatistics
	*CategoricalStatistics
}

type ColumnAnalysis struct {
	MissingCount      int          `json:"missing_count"`
	MissingPercentage float64      `json:"missing_percentage"`
	DataType          string       `json:"data_type"`
	DetectedType      DetectedType `json:"detected_type"`
	TotalValues       int          `json:"total_values"`
	NonMissingValues  int          `json:"non_missing_values"`
	Statistics        Statistics   `json:"statistics"`
	Strategy          Strategy     `json:"imputation_strategy"`
}

// Report is the analysis of every column with at least one missing cell.
type Report struct {
	File               string                     `json:"file"`
	TotalRows          int                        `json:"total_rows"`
	TotalColumns       int                        `json:"total_columns"`
	TotalCells         int                        `json:"total_cells"`
	MissingCells       int                        `json:"missing_cells"`
	MissingPercentage  float64                    `json:"missing_percentage"`
	ColumnsWithMissing int                        `json:"columns_with_missing"`
	Columns            map[string]*ColumnAnalysis `json:"column_analysis"`

	order []string
}

// Options control Analyze.
type Options struct {
	// File is recorded in the report as the source name.
	File       string
	Thresholds Thresholds
	TopK       int
}

func DefaultOptions() Options {
	return Options{Thresholds: DefaultThresholds(), TopK: profile.DefaultTopK}
}

// Analyze profiles, classifies and recommends a strategy for each column
// of f that has missing values. f is not modified.
func Analyze(f *j.Frame, opt Options) *Report {
	if opt.Thresholds == (Thresholds{}) {
		opt.Thresholds = DefaultThresholds()
	}
	if opt.TopK <= 0 {
		opt.TopK = profile.DefaultTopK
	}
	r := &Report{
		File:         opt.File,
		TotalRows:    f.Rows(),
		TotalColumns: f.Cols(),
		TotalCells:   f.Rows() * f.Cols(),
		MissingCells: f.TotalNulls(),
		Columns:      map[string]*ColumnAnalysis{},
	}
	if r.TotalCells > 0 {
		r.MissingPercentage = float64(r.MissingCells) / float64(r.TotalCells) * 100
	}
	for _, c := range f.Columns() {
		if j.NullCount(c) == 0 {
			continue
		}
		p := profile.Column(c, opt.TopK)
		dt := Classify(p, opt.Thresholds)
		ca := &ColumnAnalysis{
			MissingCount:      p.Nulls,
			MissingPercentage: p.MissingPct(),
			DataType:          p.Kind.String(),
			DetectedType:      dt,
			TotalValues:       p.Rows(),
			NonMissingValues:  p.Count,
			Statistics:        statisticsOf(p),
			Strategy:          Recommend(dt, p.MissingPct(), opt.Thresholds),
		}
		r.Columns[c.Name()] = ca
		r.order = append(r.order, c.Name())
	}
	r.ColumnsWithMissing = len(r.order)
	return r
}

func statisticsOf(p profile.ColumnProfile) Statistics {
	if p.Num != nil {
		return Statistics{NumericStatistics: &NumericStatistics{
			Mean:   p.Num.Mean,
			Median: p.Num.Median,
			Std:    profile.Finite(p.Num.Std),
			Min:    p.Num.Min,
			Max:    p.Num.Max,
		}}
	}
	if p.Kind.Numeric() || p.Kind == j.KindTime {
		// temporal columns, and numeric ones with no values, carry none
		return Statistics{}
	}
	mc := make(map[string]int, len(p.Top))
	for _, vc := range p.Top {
		mc[vc.Value] = vc.Count
	}
	return Statistics{CategoricalStatistics: &CategoricalStatistics{UniqueValues: p.Distinct, MostCommon: mc}}
}

// Order lists analyzed columns in frame order. Reports loaded from JSON
// lose that order and fall back to sorted names.
func (r *Report) Order() []string {
	if len(r.order) == len(r.Columns) {
		return r.order
	}
	names := make([]string, 0, len(r.Columns))
	for name := range r.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// SaveReport writes r to path as JSON.
func SaveReport(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// LoadReport reads a report written by SaveReport or by hand.
func LoadReport(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	if r.Columns == nil {
		r.Columns = map[string]*ColumnAnalysis{}
	}
	for name, ca := range r.Columns {
		if ca == nil {
			return nil, fmt.Errorf("parse analysis %s: column %q has no analysis", path, name)
		}
	}
	return &r, nil
}
