package csvio

import (
	"encoding/csv"
	"io"

	iox "github.com/wdm0006/gapfill/pkg/io/ioutils"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers; ".gz" paths are
// compressed and "-" writes to stdout. Nulls are written as empty cells.
func WriteAll(path string, f *j.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write writes a Frame as CSV to w.
func Write(out io.Writer, f *j.Frame, opt WriterOptions) error {
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	cols := f.Columns()
	hdr := make([]string, len(cols))
	for i, c := range cols {
		hdr[i] = c.Name()
	}
	if err := w.Write(hdr); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for r := 0; r < f.Rows(); r++ {
		for c, col := range cols {
			row[c] = j.FormatCell(col, r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
