package janitor

import (
	"fmt"
	"math"
	"strconv"
)

// FromColumns builds a frame around existing columns. All columns must have
// the same length and unique names.
func FromColumns(cols ...Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int)}
	for _, c := range cols {
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		schema: Schema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)},
		cols:   make([]Column, len(f.cols)),
		index:  make(map[string]int, len(f.index)),
		nrows:  f.nrows,
	}
	for i, c := range f.cols {
		out.cols[i] = c.Clone()
		out.index[c.Name()] = i
	}
	return out
}

// AddColumn appends a column. The first column added to an empty frame fixes
// the row count.
func (f *Frame) AddColumn(c Column) error {
	if _, dup := f.index[c.Name()]; dup {
		return fmt.Errorf("duplicate column: %s", c.Name())
	}
	if len(f.cols) > 0 && c.Len() != f.nrows {
		return fmt.Errorf("column %s has %d rows, frame has %d", c.Name(), c.Len(), f.nrows)
	}
	if len(f.cols) == 0 {
		f.nrows = c.Len()
	}
	f.index[c.Name()] = len(f.cols)
	f.cols = append(f.cols, c)
	f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true})
	return nil
}

// DropColumns removes the named columns and returns how many were present.
func (f *Frame) DropColumns(names ...string) int {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := f.index[n]; ok {
			drop[n] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}
	cols := f.cols[:0:0]
	schema := Schema{}
	for i, c := range f.cols {
		if drop[c.Name()] {
			continue
		}
		cols = append(cols, c)
		schema.Columns = append(schema.Columns, f.schema.Columns[i])
	}
	f.cols = cols
	f.schema = schema
	f.index = make(map[string]int, len(cols))
	for i, c := range cols {
		f.index[c.Name()] = i
	}
	return len(drop)
}

// DropRows returns a new frame without the rows flagged in mask, plus the
// number of rows removed. mask must be Rows() long.
func (f *Frame) DropRows(mask []bool) (*Frame, int) {
	keep := make([]int, 0, f.nrows)
	for i := 0; i < f.nrows; i++ {
		if i < len(mask) && mask[i] {
			continue
		}
		keep = append(keep, i)
	}
	out := &Frame{
		schema: Schema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)},
		cols:   make([]Column, len(f.cols)),
		index:  make(map[string]int, len(f.cols)),
		nrows:  len(keep),
	}
	for ci, c := range f.cols {
		out.cols[ci] = take(c, keep)
		out.index[c.Name()] = ci
	}
	return out, f.nrows - len(keep)
}

func take(c Column, rows []int) Column {
	switch col := c.(type) {
	case *BoolColumn:
		out := NewBoolColumn(col.name, len(rows))
		for i, r := range rows {
			out.data[i], out.nulls[i] = col.data[r], col.nulls[r]
		}
		return out
	case *IntColumn:
		out := NewIntColumn(col.name, len(rows))
		for i, r := range rows {
			out.data[i], out.nulls[i] = col.data[r], col.nulls[r]
		}
		return out
	case *FloatColumn:
		out := NewFloatColumn(col.name, len(rows))
		for i, r := range rows {
			out.data[i], out.nulls[i] = col.data[r], col.nulls[r]
		}
		return out
	case *StringColumn:
		out := NewStringColumn(col.name, len(rows))
		for i, r := range rows {
			out.data[i], out.nulls[i] = col.data[r], col.nulls[r]
		}
		return out
	case *TimeColumn:
		out := NewTimeColumn(col.name, len(rows))
		out.layout = col.layout
		for i, r := range rows {
			out.data[i], out.nulls[i] = col.data[r], col.nulls[r]
		}
		return out
	default:
		panic("unknown column type")
	}
}

// NullMask reports, per row, whether the column is null.
func NullMask(c Column) []bool {
	m := make([]bool, c.Len())
	for i := range m {
		m[i] = c.IsNull(i)
	}
	return m
}

// NullCount counts null cells in c.
func NullCount(c Column) int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// TotalNulls counts null cells across all columns.
func (f *Frame) TotalNulls() int {
	n := 0
	for _, c := range f.cols {
		n += NullCount(c)
	}
	return n
}

// FormatCell renders a non-null cell as text; null cells render as "".
func FormatCell(c Column, i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch col := c.(type) {
	case *BoolColumn:
		return strconv.FormatBool(col.data[i])
	case *IntColumn:
		return strconv.FormatInt(col.data[i], 10)
	case *FloatColumn:
		return strconv.FormatFloat(col.data[i], 'g', -1, 64)
	case *StringColumn:
		return col.data[i]
	case *TimeColumn:
		return col.data[i].Format(col.Layout())
	default:
		return ""
	}
}

// FloatAt returns a numeric cell as float64. ok is false for null cells and
// non-numeric columns.
func FloatAt(c Column, i int) (float64, bool) {
	switch col := c.(type) {
	case *IntColumn:
		v, ok := col.Get(i)
		return float64(v), ok
	case *FloatColumn:
		return col.Get(i)
	default:
		return 0, false
	}
}

// CopyCell copies row src of c into row dst, nulls included.
func CopyCell(c Column, dst, src int) {
	switch col := c.(type) {
	case *BoolColumn:
		col.data[dst], col.nulls[dst] = col.data[src], col.nulls[src]
	case *IntColumn:
		col.data[dst], col.nulls[dst] = col.data[src], col.nulls[src]
	case *FloatColumn:
		col.data[dst], col.nulls[dst] = col.data[src], col.nulls[src]
	case *StringColumn:
		col.data[dst], col.nulls[dst] = col.data[src], col.nulls[src]
	case *TimeColumn:
		col.data[dst], col.nulls[dst] = col.data[src], col.nulls[src]
	default:
		panic("unknown column type")
	}
}

// SetFloat stores v into a numeric column. An int column only takes whole
// values; use Frame.WidenFor first when v may be fractional.
func SetFloat(c Column, i int, v float64) error {
	switch col := c.(type) {
	case *IntColumn:
		if !Whole(v) {
			return fmt.Errorf("column %s is int, cannot hold %v", c.Name(), v)
		}
		col.Set(i, int64(v))
	case *FloatColumn:
		col.Set(i, v)
	default:
		return fmt.Errorf("column %s is %v, not numeric", c.Name(), c.Kind())
	}
	return nil
}

// Whole reports whether v fits an int64 unchanged.
func Whole(v float64) bool {
	return v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64
}

// ToFloat copies an int column into a float column of the same name, nulls
// included.
func ToFloat(c *IntColumn) *FloatColumn {
	out := NewFloatColumn(c.name, len(c.data))
	for i, v := range c.data {
		out.data[i], out.nulls[i] = float64(v), c.nulls[i]
	}
	return out
}

// ReplaceColumn swaps c in for the column of the same name, keeping its
// position.
func (f *Frame) ReplaceColumn(c Column) error {
	i, ok := f.index[c.Name()]
	if !ok {
		return fmt.Errorf("unknown column: %s", c.Name())
	}
	if c.Len() != f.nrows {
		return fmt.Errorf("column %s has %d rows, frame has %d", c.Name(), c.Len(), f.nrows)
	}
	f.cols[i] = c
	f.schema.Columns[i].Type = c.Kind()
	return nil
}

// WidenFor returns the named column ready to take every value in vals. An int
// column is promoted to float in place when any value is fractional; callers
// must drop references to the old column.
func (f *Frame) WidenFor(name string, vals ...float64) (Column, error) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown column: %s", name)
	}
	ic, ok := col.(*IntColumn)
	if !ok {
		return col, nil
	}
	for _, v := range vals {
		if !Whole(v) {
			fc := ToFloat(ic)
			return fc, f.ReplaceColumn(fc)
		}
	}
	return col, nil
}
