package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"strconv"

	iox "github.com/wdm0006/gapfill/pkg/io/ioutils"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// WriteAll writes one JSON object per row, keys in column order.
// Null cells are written as null.
func WriteAll(path string, f *j.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func Write(out io.Writer, f *j.Frame) error {
	w := bufio.NewWriter(out)
	cols := f.Columns()
	keys := make([][]byte, len(cols))
	for i, c := range cols {
		b, err := json.Marshal(c.Name())
		if err != nil {
			return err
		}
		keys[i] = b
	}
	var buf []byte
	for r := 0; r < f.Rows(); r++ {
		buf = append(buf[:0], '{')
		for i, c := range cols {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, keys[i]...)
			buf = append(buf, ':')
			buf = appendValue(buf, c, r)
		}
		buf = append(buf, '}', '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}

func appendValue(buf []byte, c j.Column, r int) []byte {
	if c.IsNull(r) {
		return append(buf, "null"...)
	}
	switch col := c.(type) {
	case *j.BoolColumn:
		v, _ := col.Get(r)
		return strconv.AppendBool(buf, v)
	case *j.IntColumn:
		v, _ := col.Get(r)
		return strconv.AppendInt(buf, v, 10)
	case *j.FloatColumn:
		v, _ := col.Get(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return append(buf, "null"...)
		}
		return strconv.AppendFloat(buf, v, 'g', -1, 64)
	default:
		b, _ := json.Marshal(j.FormatCell(c, r))
		return append(buf, b...)
	}
}
