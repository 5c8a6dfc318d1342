package impute

import (
	"errors"
	"fmt"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

var (
	// ErrNotNumeric is returned by arithmetic fills applied to a non-numeric column.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrUnsupportedKind is returned when a fill value cannot be stored in the column.
	ErrUnsupportedKind = errors.New("unsupported column kind")
)

func notNumeric(c j.Column) error {
	return fmt.Errorf("%s (%v): %w", c.Name(), c.Kind(), ErrNotNumeric)
}

// fillFloat sets every null cell of the named numeric column to v. An int
// column becomes float when v is fractional.
func fillFloat(f *j.Frame, name string, v float64) error {
	c, err := f.WidenFor(name, v)
	if err != nil {
		return err
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			if err := j.SetFloat(c, i, v); err != nil {
				return err
			}
		}
	}
	return nil
}
