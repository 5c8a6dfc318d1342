package parquetio

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

type field struct {
	Tag string `json:"Tag"`
}

type schema struct {
	Tag    string  `json:"Tag"`
	Fields []field `json:"Fields"`
}

// schemaJSON builds the JSON schema the parquet-go JSONWriter expects. Every
// column is optional; time columns are stored as UTF8 text in their layout.
func schemaJSON(f *j.Frame) (string, error) {
	sc := schema{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	for _, c := range f.Columns() {
		if strings.ContainsAny(c.Name(), ",=") {
			return "", fmt.Errorf("parquet: column name %q contains ',' or '='", c.Name())
		}
		tag := "name=" + c.Name() + ", repetitiontype=OPTIONAL, type="
		switch c.Kind() {
		case j.KindFloat:
			tag += "DOUBLE"
		case j.KindInt:
			tag += "INT64"
		case j.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter.
func WriteAll(path string, f *j.Frame) (err error) {
	sch, err := schemaJSON(f)
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()
	writer, err := pw.NewJSONWriter(sch, fw, 4)
	if err != nil {
		return fmt.Errorf("parquet writer init: %w", err)
	}
	cols := f.Columns()
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			rec[c.Name()] = cellValue(c, r)
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		return fmt.Errorf("parquet write stop: %w", err)
	}
	return nil
}

func cellValue(c j.Column, r int) any {
	if c.IsNull(r) {
		return nil
	}
	switch col := c.(type) {
	case *j.BoolColumn:
		v, _ := col.Get(r)
		return v
	case *j.IntColumn:
		v, _ := col.Get(r)
		return v
	case *j.FloatColumn:
		v, _ := col.Get(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	default:
		return j.FormatCell(c, r)
	}
}
