package tableio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"a.csv":       "csv",
		"a.CSV.gz":    "csv",
		"a.tsv":       "csv",
		"a.jsonl":     "jsonl",
		"a.ndjson.gz": "jsonl",
		"a.parquet":   "parquet",
		"dir/b.xlsx":  "xlsx",
	}
	for path, want := range cases {
		got, err := Format(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := Format("a.json")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadWriteEachFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.tsv")
	require.NoError(t, os.WriteFile(src, []byte("k\tv\na\t1\nb\t\n"), 0o644))

	f, _, err := Read(src, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, f.Cols())

	for _, name := range []string{"out.csv", "out.tsv", "out.jsonl.gz", "out.parquet"} {
		p := filepath.Join(dir, name)
		require.NoError(t, Write(p, f, Options{}), name)
		back, _, err := Read(p, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, 2, back.Rows(), name)
		v, _ := back.ColumnByName("v")
		assert.Equal(t, j.KindInt, v.Kind(), name)
		assert.Equal(t, 1, j.NullCount(v), name)
	}

	err = Write(filepath.Join(dir, "out.xlsx"), f, Options{})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
