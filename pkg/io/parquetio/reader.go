package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	parquet "github.com/segmentio/parquet-go"

	iox "github.com/wdm0006/gapfill/pkg/io/ioutils"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// ErrNested is returned for files whose schema is not a flat list of
// optional or required leaf columns.
var ErrNested = errors.New("parquet: nested or repeated columns are not supported")

// ReadFile reads a flat Parquet file into a Frame, keeping the file's column
// order. Text columns whose every value parses as a timestamp become time
// columns, which lets files written by WriteAll round trip.
func ReadFile(path string) (*j.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	st, err := fh.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(fh, st.Size())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fields := pf.Schema().Fields()
	n := int(pf.NumRows())
	cols := make([]j.Column, len(fields))
	for i, fd := range fields {
		if !fd.Leaf() || fd.Repeated() {
			return nil, fmt.Errorf("read %s: column %q: %w", path, fd.Name(), ErrNested)
		}
		col, err := j.NewColumn(fd.Name(), kindOf(fd.Type()), n)
		if err != nil {
			return nil, err
		}
		for r := 0; r < n; r++ {
			col.SetNull(r)
		}
		cols[i] = col
	}

	rd := parquet.NewReader(fh)
	defer func() { _ = rd.Close() }()
	buf := make([]parquet.Row, 256)
	row := 0
	for {
		k, err := rd.ReadRows(buf)
		for _, values := range buf[:k] {
			if row >= n {
				break
			}
			for _, v := range values {
				c := v.Column()
				if c < 0 || c >= len(cols) || v.IsNull() {
					continue
				}
				setValue(cols[c], fields[c].Type(), row, v)
			}
			row++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if k == 0 {
			break
		}
	}
	for i, c := range cols {
		if sc, ok := c.(*j.StringColumn); ok {
			cols[i] = asTime(sc)
		}
	}
	return j.FromColumns(cols...)
}

func kindOf(t parquet.Type) j.Kind {
	if lt := t.LogicalType(); lt != nil && (lt.Timestamp != nil || lt.Date != nil) {
		return j.KindTime
	}
	switch t.Kind() {
	case parquet.Boolean:
		return j.KindBool
	case parquet.Int32, parquet.Int64:
		return j.KindInt
	case parquet.Float, parquet.Double:
		return j.KindFloat
	default:
		return j.KindString
	}
}

func setValue(c j.Column, t parquet.Type, row int, v parquet.Value) {
	switch col := c.(type) {
	case *j.BoolColumn:
		col.Set(row, v.Boolean())
	case *j.IntColumn:
		if v.Kind() == parquet.Int32 {
			col.Set(row, int64(v.Int32()))
		} else {
			col.Set(row, v.Int64())
		}
	case *j.FloatColumn:
		if v.Kind() == parquet.Float {
			col.Set(row, float64(v.Float()))
		} else {
			col.Set(row, v.Double())
		}
	case *j.StringColumn:
		col.Set(row, string(v.ByteArray()))
	case *j.TimeColumn:
		lt := t.LogicalType()
		switch {
		case lt.Date != nil:
			col.Set(row, time.Unix(int64(v.Int32())*86400, 0).UTC())
		case lt.Timestamp.Unit.Millis != nil:
			col.Set(row, time.UnixMilli(v.Int64()).UTC())
		case lt.Timestamp.Unit.Micros != nil:
			col.Set(row, time.UnixMicro(v.Int64()).UTC())
		default:
			col.Set(row, time.Unix(0, v.Int64()).UTC())
		}
	}
}

// asTime converts a string column to a time column when every value
// parses with one layout.
func asTime(sc *j.StringColumn) j.Column {
	values := make([]string, 0, sc.Len())
	for i := 0; i < sc.Len(); i++ {
		if v, ok := sc.Get(i); ok {
			values = append(values, v)
		}
	}
	nulls := iox.NullSet(nil)
	kind, layout := iox.InferKind(values, nulls)
	if kind != j.KindTime {
		return sc
	}
	tc := j.NewTimeColumn(sc.Name(), sc.Len())
	tc.SetLayout(layout)
	for i := 0; i < sc.Len(); i++ {
		tc.SetNull(i)
		if v, ok := sc.Get(i); ok {
			_, _ = iox.ParseCell(tc, i, v, nulls)
		}
	}
	return tc
}
