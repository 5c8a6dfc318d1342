package impute

import (
	"context"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// ForwardFill carries the last non-null value forward. Leading nulls stay.
type ForwardFill struct{ Column string }

func (t *ForwardFill) Name() string { return "impute_ffill" }

func (t *ForwardFill) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	if col, ok := f.ColumnByName(t.Column); ok {
		forwardFill(col)
	}
	return f, nil
}

// BackwardFill carries the next non-null value backward. Trailing nulls stay.
type BackwardFill struct{ Column string }

func (t *BackwardFill) Name() string { return "impute_bfill" }

func (t *BackwardFill) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	next := -1
	for i := col.Len() - 1; i >= 0; i-- {
		switch {
		case !col.IsNull(i):
			next = i
		case next >= 0:
			j.CopyCell(col, i, next)
		}
	}
	return f, nil
}

func forwardFill(col j.Column) {
	last := -1
	for i := 0; i < col.Len(); i++ {
		switch {
		case !col.IsNull(i):
			last = i
		case last >= 0:
			j.CopyCell(col, i, last)
		}
	}
}
