package csvio

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

const sample = `id,score,grade,joined,active,note
1,3.5,A,2024-01-02,true,
2,,B,2024-01-05,false,hello
3,4.25,,NA,true,N/A
4,1,A,2024-02-01,,world
`

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestInferAndRead(t *testing.T) {
	p := writeTemp(t, "data.csv", sample)
	fr, warnings, err := ReadFile(p, ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if warnings != "" {
		t.Fatalf("unexpected warnings %q", warnings)
	}
	if fr.Rows() != 4 || fr.Cols() != 6 {
		t.Fatalf("expected 4x6, got %dx%d", fr.Rows(), fr.Cols())
	}
	want := []j.Kind{j.KindInt, j.KindFloat, j.KindString, j.KindTime, j.KindBool, j.KindString}
	for i, c := range fr.Columns() {
		if c.Kind() != want[i] {
			t.Fatalf("column %s: expected %v, got %v", c.Name(), want[i], c.Kind())
		}
	}
	nulls := map[string]int{"id": 0, "score": 1, "grade": 1, "joined": 1, "active": 1, "note": 2}
	for name, n := range nulls {
		c, _ := fr.ColumnByName(name)
		assert.Equal(t, n, j.NullCount(c), name)
	}
	joined, _ := fr.ColumnByName("joined")
	ts, ok := joined.(*j.TimeColumn).Get(3)
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2006-01-02", joined.(*j.TimeColumn).Layout())
}

func TestSniffDelimiterAndGzip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv.gz")
	out, err := os.Create(p)
	require.NoError(t, err)
	zw := gzip.NewWriter(out)
	_, err = zw.Write([]byte(strings.ReplaceAll(sample, ",", ";")))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	fr, _, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, fr.Cols())
	assert.Equal(t, 4, fr.Rows())
}

func TestShortRecordsAndBadCells(t *testing.T) {
	p := writeTemp(t, "ragged.csv", "a,b\n1,2\n3\n4,5,6\n")
	fr, warnings, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, fr.Rows())
	assert.Contains(t, warnings, "short_records=1")
	assert.Contains(t, warnings, "long_records=1")

	_, _, err = ReadFile(p, ReaderOptions{Strict: true})
	assert.Error(t, err)

	p = writeTemp(t, "sampled.csv", "n\n1\n2\nthree\n")
	fr, warnings, err = ReadFile(p, ReaderOptions{SampleRows: 2})
	require.NoError(t, err)
	c, _ := fr.ColumnByName("n")
	assert.Equal(t, j.KindInt, c.Kind())
	assert.Equal(t, 1, j.NullCount(c))
	assert.Contains(t, warnings, "unparsed_cells=1")
}

func TestOversizedIntegersStayText(t *testing.T) {
	p := writeTemp(t, "accounts.csv", "acct,n,big\n12345678901234567890123,1,1e999\n98765432109876543210987,9223372036854775807,2\n")
	fr, warnings, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	acct, _ := fr.ColumnByName("acct")
	assert.Equal(t, j.KindString, acct.Kind())
	assert.Equal(t, 0, j.NullCount(acct))
	assert.Equal(t, "12345678901234567890123", j.FormatCell(acct, 0))

	n, _ := fr.ColumnByName("n")
	assert.Equal(t, j.KindInt, n.Kind())
	assert.Equal(t, "9223372036854775807", j.FormatCell(n, 1))

	big, _ := fr.ColumnByName("big")
	assert.Equal(t, j.KindString, big.Kind())
	assert.Equal(t, 0, j.NullCount(big))
	assert.Equal(t, 0, fr.TotalNulls())
}

func TestDuplicateHeaders(t *testing.T) {
	p := writeTemp(t, "dup.csv", "\ufeffa,a,\n1,2,3\n")
	fr, _, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)
	var names []string
	for _, c := range fr.Columns() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"a", "a.1", "col_2"}, names)
}

func TestWriteRoundTrip(t *testing.T) {
	p := writeTemp(t, "data.csv", sample)
	fr, _, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteAll(out, fr, WriterOptions{}))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, "id,score,grade,joined,active,note", lines[0])
	assert.Equal(t, "1,3.5,A,2024-01-02,true,", lines[1])
	assert.Equal(t, "3,4.25,,,true,", lines[3])

	back, _, err := ReadFile(out, ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, fr.TotalNulls(), back.TotalNulls())
}
