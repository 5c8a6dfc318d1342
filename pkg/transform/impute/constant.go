package impute

import (
	"context"
	"fmt"
	"strconv"
	"time"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// Constant fills nulls with Value, coerced to the column kind. String values
// are parsed for numeric, bool and time columns.
type Constant struct {
	Column string
	Value  any
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	switch c := col.(type) {
	case *j.FloatColumn:
		vv, err := toFloat(t.Value)
		if err != nil {
			return f, t.coerceErr(col, err)
		}
		fill(c, func(i int) { c.Set(i, vv) })
	case *j.IntColumn:
		vv, err := toFloat(t.Value)
		if err != nil {
			return f, t.coerceErr(col, err)
		}
		if err := fillFloat(f, t.Column, vv); err != nil {
			return f, err
		}
	case *j.StringColumn:
		vv := fmt.Sprint(t.Value)
		fill(c, func(i int) { c.Set(i, vv) })
	case *j.BoolColumn:
		var vv bool
		switch v := t.Value.(type) {
		case bool:
			vv = v
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return f, t.coerceErr(col, err)
			}
			vv = b
		default:
			return f, t.coerceErr(col, ErrUnsupportedKind)
		}
		fill(c, func(i int) { c.Set(i, vv) })
	case *j.TimeColumn:
		var vv time.Time
		switch v := t.Value.(type) {
		case time.Time:
			vv = v
		case string:
			ts, err := time.Parse(c.Layout(), v)
			if err != nil {
				return f, t.coerceErr(col, err)
			}
			vv = ts
		default:
			return f, t.coerceErr(col, ErrUnsupportedKind)
		}
		fill(c, func(i int) { c.Set(i, vv) })
	default:
		return f, t.coerceErr(col, ErrUnsupportedKind)
	}
	return f, nil
}

func (t *Constant) coerceErr(c j.Column, err error) error {
	return fmt.Errorf("constant %v for %s (%v): %w", t.Value, c.Name(), c.Kind(), err)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, ErrUnsupportedKind
	}
}

// fill calls set for every null row of c.
func fill(c j.Column, set func(i int)) {
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			set(i)
		}
	}
}
