package impute

import (
	"context"

	j "github.com/wdm0006/gapfill/pkg/janitor"
	"github.com/wdm0006/gapfill/pkg/profile"
)

type Median struct{ Column string }

func (t *Median) Name() string { return "impute_median" }

func (t *Median) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
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
	return f, fillFloat(f, t.Column, profile.Median(vals))
}
