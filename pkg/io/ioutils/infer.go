package ioutils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// DefaultNullValues are the cell texts read as missing, compared after
// trimming spaces.
var DefaultNullValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "NULL", "null", "None", "<NA>", "#N/A"}

// TimeLayouts are tried in order when inferring temporal columns.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// NullSet builds a lookup from a null token list; nil means DefaultNullValues.
func NullSet(values []string) map[string]bool {
	if values == nil {
		values = DefaultNullValues
	}
	set := make(map[string]bool, len(values)+1)
	set[""] = true
	for _, v := range values {
		set[v] = true
	}
	return set
}

// InferKind picks the narrowest kind that every non-null value fits:
// int, float, bool, then time (one layout for the whole column), else string.
// Numbers count only when they parse in range, so an integer wider than int64
// makes the column text. A column with no values is a string column.
func InferKind(values []string, nulls map[string]bool) (j.Kind, string) {
	num, integer, boolean, total := 0, 0, 0, 0
	var present []string
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if nulls[v] {
			continue
		}
		total++
		present = append(present, v)
		if numre.MatchString(v) {
			if !strings.ContainsAny(v, ".eE") {
				// Out of int64 range reads as text so long ids survive intact.
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					num++
					integer++
				}
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				num++
			}
			continue
		}
		if lv := strings.ToLower(v); lv == "true" || lv == "false" {
			boolean++
		}
	}
	switch {
	case total == 0:
		return j.KindString, ""
	case integer == total:
		return j.KindInt, ""
	case num == total:
		return j.KindFloat, ""
	case boolean == total:
		return j.KindBool, ""
	}
	if layout := timeLayout(present); layout != "" {
		return j.KindTime, layout
	}
	return j.KindString, ""
}

func timeLayout(values []string) string {
	for _, layout := range TimeLayouts {
		ok := true
		for _, v := range values {
			if _, err := time.Parse(layout, v); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return layout
		}
	}
	return ""
}

// ParseCell stores text into row i of c. It reports false when the text is a
// null token (the cell stays null) and returns an error when it does not fit
// the column kind.
func ParseCell(c j.Column, i int, raw string, nulls map[string]bool) (bool, error) {
	v := strings.TrimSpace(raw)
	if nulls[v] {
		return false, nil
	}
	switch col := c.(type) {
	case *j.IntColumn:
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return false, err
		}
		col.Set(i, x)
	case *j.FloatColumn:
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false, err
		}
		col.Set(i, x)
	case *j.BoolColumn:
		x, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return false, err
		}
		col.Set(i, x)
	case *j.TimeColumn:
		x, err := time.Parse(col.Layout(), v)
		if err != nil {
			return false, err
		}
		col.Set(i, x)
	case *j.StringColumn:
		col.Set(i, strings.ToValidUTF8(v, "?"))
	}
	return true, nil
}

// Records describes a table read as text.
type Records struct {
	Names []string
	Rows  [][]string
	// SampleRows limits kind inference to the first rows; 0 uses every row.
	SampleRows int
	NullValues []string
}

// Frame infers column kinds and builds a Frame. Short rows pad with nulls;
// cells that do not parse as their column kind become null and are counted
// in bad.
func (rs Records) Frame() (f *j.Frame, bad int, err error) {
	nulls := NullSet(rs.NullValues)
	sample := rs.Rows
	if rs.SampleRows > 0 && rs.SampleRows < len(sample) {
		sample = sample[:rs.SampleRows]
	}
	names := UniqueNames(rs.Names)
	cols := make([]j.Column, len(names))
	vals := make([]string, len(sample))
	for c, name := range names {
		for r, row := range sample {
			vals[r] = ""
			if c < len(row) {
				vals[r] = row[c]
			}
		}
		kind, layout := InferKind(vals, nulls)
		col, err := j.NewColumn(name, kind, len(rs.Rows))
		if err != nil {
			return nil, 0, err
		}
		if tc, ok := col.(*j.TimeColumn); ok {
			tc.SetLayout(layout)
		}
		for r, row := range rs.Rows {
			col.SetNull(r)
			if c >= len(row) {
				continue
			}
			if _, err := ParseCell(col, r, row[c], nulls); err != nil {
				bad++
			}
		}
		cols[c] = col
	}
	f, err = j.FromColumns(cols...)
	return f, bad, err
}

// UniqueNames suffixes repeated header names (a, a.1, a.2) and names blank
// ones by position.
func UniqueNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		n = strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))
		if n == "" {
			n = "col_" + strconv.Itoa(i)
		}
		name := n
		for k := 1; used[name]; k++ {
			name = n + "." + strconv.Itoa(k)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
