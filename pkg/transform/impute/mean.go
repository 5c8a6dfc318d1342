package impute

import (
	"context"

	j "github.com/wdm0006/gapfill/pkg/janitor"
	"github.com/wdm0006/gapfill/pkg/profile"
	"gonum.org/v1/gonum/stat"
)

// Mean fills nulls with the column mean. An int column with a fractional
// mean becomes a float column.
type Mean struct{ Column string }

func (t *Mean) Name() string { return "impute_mean" }

func (t *Mean) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	if !col.Kind().Numeric() {
		return f, notNumeric(col)
	}
	vals := profile.NumericValues(col)
	if len(vals) == 0 {
		return f, nil
	}
	return f, fillFloat(f, t.Column, stat.Mean(vals, nil))
}
