package jsonlio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	iox "github.com/wdm0006/gapfill/pkg/io/ioutils"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

type ReaderOptions struct {
	SampleRows int // rows used for kind inference; 0 = all
	// NullValues are read as missing; nil means ioutils.DefaultNullValues.
	NullValues []string
}

// Reader reads one JSON object per line. Columns appear in the order their
// keys are first seen.
type Reader struct {
	r        *bufio.Reader
	opt      ReaderOptions
	badCells int
	blank    int
}

// Open opens a JSONL file (or stdin for "-"), transparently gunzipping it.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024), opt: opt}
}

// ReadFrame decodes every line and infers column kinds from the values.
func (r *Reader) ReadFrame() (*j.Frame, error) {
	var names []string
	index := map[string]int{}
	var rows [][]string
	line := 0
	for {
		raw, err := r.r.ReadBytes('\n')
		if len(bytes.TrimSpace(raw)) > 0 {
			line++
			keys, m, derr := decodeObject(raw)
			if derr != nil {
				return nil, fmt.Errorf("jsonl line %d: %w", line, derr)
			}
			for _, k := range keys {
				if _, ok := index[k]; !ok {
					index[k] = len(names)
					names = append(names, k)
				}
			}
			row := make([]string, len(names))
			for k, v := range m {
				row[index[k]] = cellText(v)
			}
			rows = append(rows, row)
		} else if err == nil {
			r.blank++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if names == nil {
		return nil, fmt.Errorf("jsonl: no records")
	}
	f, bad, err := iox.Records{Names: names, Rows: rows, SampleRows: r.opt.SampleRows, NullValues: r.opt.NullValues}.Frame()
	r.badCells += bad
	return f, err
}

// ReadFile opens, reads and closes a JSONL file.
func ReadFile(path string, opt ReaderOptions) (*j.Frame, string, error) {
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

// Warnings returns a summary string of skipped lines and unparsed cells.
func (r *Reader) Warnings() string {
	parts := []string{}
	if r.blank > 0 {
		parts = append(parts, fmt.Sprintf("blank_lines=%d", r.blank))
	}
	if r.badCells > 0 {
		parts = append(parts, fmt.Sprintf("unparsed_cells=%d", r.badCells))
	}
	return strings.Join(parts, ", ")
}

// decodeObject returns the top-level keys of a JSON object in document order
// along with the decoded values.
func decodeObject(raw []byte) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	m := map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		k, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := m[k]; !dup {
			keys = append(keys, k)
		}
		m[k] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, m, nil
}

// cellText renders a decoded JSON value as cell text. null becomes "" and
// nested values keep their JSON encoding.
func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
