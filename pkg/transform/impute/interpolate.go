package impute

import (
	"context"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// Interpolate fills interior nulls of a numeric column linearly by row
// position. Nulls after the last value take that value; nulls before the
// first value stay. An int column with fractional points becomes float.
// Non-numeric columns are forward filled.
type Interpolate struct{ Column string }

func (t *Interpolate) Name() string { return "impute_interpolate" }

func (t *Interpolate) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	if !col.Kind().Numeric() {
		forwardFill(col)
		return f, nil
	}
	var rows []int
	var vals []float64
	prev := -1
	var pv float64
	for i := 0; i < col.Len(); i++ {
		v, ok := j.FloatAt(col, i)
		if !ok {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (v - pv) / float64(i-prev)
			for k := prev + 1; k < i; k++ {
				rows = append(rows, k)
				vals = append(vals, pv+step*float64(k-prev))
			}
		}
		prev, pv = i, v
	}
	if prev >= 0 {
		for k := prev + 1; k < col.Len(); k++ {
			rows = append(rows, k)
			vals = append(vals, pv)
		}
	}
	col, err := f.WidenFor(t.Column, vals...)
	if err != nil {
		return f, err
	}
	for n, k := range rows {
		if err := j.SetFloat(col, k, vals[n]); err != nil {
			return f, err
		}
	}
	return f, nil
}
