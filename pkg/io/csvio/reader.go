package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	iox "github.com/wdm0006/gapfill/pkg/io/ioutils"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // rows used for kind inference; 0 = all
	Strict     bool // if true, error on short/long records
	// NullValues are read as missing; nil means ioutils.DefaultNullValues.
	NullValues []string
}

type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	// repair/warning counters
	shortRecords int
	longRecords  int
	badCells     int
}

// Open opens a CSV file (or stdin for "-"), transparently gunzipping it.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	br := bufio.NewReaderSize(r, 64*1024)
	rr := csv.NewReader(br)
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		d, lazy := sniffDelimiterAndQuotes(sample)
		rr.Comma = d
		rr.LazyQuotes = lazy
	} else {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}
}

// ReadFrame reads every record and infers column kinds.
func (r *Reader) ReadFrame() (*j.Frame, error) {
	var names []string
	var rows [][]string
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if names == nil {
			if r.opt.HasHeader {
				names = append([]string(nil), rec...)
				continue
			}
			names = make([]string, len(rec))
			for i := range names {
				names[i] = "col_" + strconv.Itoa(i)
			}
		}
		switch {
		case len(rec) < len(names):
			r.shortRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("csv short record at row %d: need %d fields, got %d", len(rows)+1, len(names), len(rec))
			}
		case len(rec) > len(names):
			r.longRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("csv long record at row %d: need %d fields, got %d", len(rows)+1, len(names), len(rec))
			}
			rec = rec[:len(names)]
		}
		rows = append(rows, rec)
	}
	if names == nil {
		return nil, fmt.Errorf("csv: no header or records")
	}
	f, bad, err := iox.Records{Names: names, Rows: rows, SampleRows: r.opt.SampleRows, NullValues: r.opt.NullValues}.Frame()
	r.badCells += bad
	return f, err
}

// ReadFile opens, reads and closes a CSV file with a header row.
func ReadFile(path string, opt ReaderOptions) (*j.Frame, string, error) {
	opt.HasHeader = true
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = c.Close() }()
	f, err := r.ReadFrame()
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return f, r.Warnings(), nil
}

func sniffDelimiterAndQuotes(sample []byte) (rune, bool) {
	if len(sample) == 0 {
		return ',', false
	}
	// only the header line decides; data cells may contain any candidate
	if i := strings.IndexByte(string(sample), '\n'); i > 0 {
		sample = sample[:i]
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount%2 != 0
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	if r.badCells > 0 {
		parts = append(parts, fmt.Sprintf("unparsed_cells=%d", r.badCells))
	}
	return strings.Join(parts, ", ")
}
