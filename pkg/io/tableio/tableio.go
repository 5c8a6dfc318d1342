// Package tableio reads and writes Frames in the format named by a file's
// extension.
package tableio

import (
	"errors"
	"fmt"

	"github.com/wdm0006/gapfill/pkg/io/csvio"
	iox "github.com/wdm0006/gapfill/pkg/io/ioutils"
	"github.com/wdm0006/gapfill/pkg/io/jsonlio"
	"github.com/wdm0006/gapfill/pkg/io/parquetio"
	"github.com/wdm0006/gapfill/pkg/io/xlsxio"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

var ErrUnsupportedFormat = errors.New("unsupported table format")

// Options apply to whichever reader or writer is selected; fields a format
// does not use are ignored.
type Options struct {
	Delimiter  rune
	SampleRows int
	NullValues []string
	Sheet      string
}

// Format returns the format name for path: csv, jsonl, parquet or xlsx.
func Format(path string) (string, error) {
	switch ext := iox.TableExt(path); ext {
	case ".csv", ".tsv", ".txt":
		return "csv", nil
	case ".jsonl", ".ndjson":
		return "jsonl", nil
	case ".parquet", ".pq":
		return "parquet", nil
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Read loads a table. warnings summarizes repaired records and unparsed cells.
func Read(path string, opt Options) (f *j.Frame, warnings string, err error) {
	format, err := Format(path)
	if err != nil {
		return nil, "", err
	}
	switch format {
	case "csv":
		d := opt.Delimiter
		if d == 0 && iox.TableExt(path) == ".tsv" {
			d = '\t'
		}
		return csvio.ReadFile(path, csvio.ReaderOptions{Delimiter: d, SampleRows: opt.SampleRows, NullValues: opt.NullValues})
	case "jsonl":
		return jsonlio.ReadFile(path, jsonlio.ReaderOptions{SampleRows: opt.SampleRows, NullValues: opt.NullValues})
	case "parquet":
		f, err = parquetio.ReadFile(path)
		return f, "", err
	default:
		return xlsxio.ReadFile(path, xlsxio.ReaderOptions{Sheet: opt.Sheet, SampleRows: opt.SampleRows, NullValues: opt.NullValues})
	}
}

// Write saves f in the format named by path. Workbooks are read-only.
func Write(path string, f *j.Frame, opt Options) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		d := opt.Delimiter
		if d == 0 && iox.TableExt(path) == ".tsv" {
			d = '\t'
		}
		return csvio.WriteAll(path, f, csvio.WriterOptions{Delimiter: d})
	case "jsonl":
		return jsonlio.WriteAll(path, f)
	case "parquet":
		return parquetio.WriteAll(path, f)
	default:
		return fmt.Errorf("%w: writing %s", ErrUnsupportedFormat, format)
	}
}
