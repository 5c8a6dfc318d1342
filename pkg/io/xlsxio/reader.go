// Package xlsxio reads worksheets of Excel workbooks into Frames.
package xlsxio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	iox "github.com/wdm0006/gapfill/pkg/io/ioutils"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

type ReaderOptions struct {
	Sheet      string // default: first sheet
	SampleRows int
	NullValues []string
}

// ReadFile reads one sheet; the first row is the header. Cells are read as
// displayed and typed with the same inference used for CSV.
func ReadFile(path string, opt ReaderOptions) (*j.Frame, string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = wb.Close() }()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, "", fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, "", fmt.Errorf("sheet %q is empty", sheet)
	}
	names := rows[0]
	body := rows[1:]
	long := 0
	for i, r := range body {
		if len(r) > len(names) {
			long++
			body[i] = r[:len(names)]
		}
	}
	f, bad, err := iox.Records{Names: names, Rows: body, SampleRows: opt.SampleRows, NullValues: opt.NullValues}.Frame()
	if err != nil {
		return nil, "", err
	}
	var warnings string
	if long > 0 {
		warnings = fmt.Sprintf("long_records=%d", long)
	}
	if bad > 0 {
		if warnings != "" {
			warnings += ", "
		}
		warnings += fmt.Sprintf("unparsed_cells=%d", bad)
	}
	return f, warnings, nil
}
