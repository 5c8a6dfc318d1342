package impute

import (
	"context"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// Mode fills nulls with the most frequent value. Works on every column kind.
// A tie for the highest count leaves the column untouched.
type Mode struct{ Column string }

func (t *Mode) Name() string { return "impute_mode" }

func (t *Mode) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	src, ok := modeRow(col)
	if !ok {
		return f, nil
	}
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			j.CopyCell(col, i, src)
		}
	}
	return f, nil
}

// modeRow returns the first row holding the unique most frequent value.
func modeRow(c j.Column) (int, bool) {
	counts := map[string]int{}
	first := map[string]int{}
	var best string
	bestc, ties := 0, 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := j.FormatCell(c, i)
		if _, seen := first[v]; !seen {
			first[v] = i
		}
		counts[v]++
		switch n := counts[v]; {
		case n > bestc:
			best, bestc, ties = v, n, 1
		case n == bestc:
			ties++
		}
	}
	if bestc == 0 || ties > 1 {
		return 0, false
	}
	return first[best], true
}
