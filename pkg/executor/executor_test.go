package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wdm0006/gapfill/pkg/analyze"
	j "github.com/wdm0006/gapfill/pkg/janitor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func symmetricWithNulls(name string, reps, missing int) *j.FloatColumn {
	c := j.NewFloatColumn(name, 0)
	for r := 0; r < reps; r++ {
		for v := 1; v <= 9; v++ {
			c.Append(float64(v))
		}
	}
	for i := 0; i < missing; i++ {
		c.AppendNull()
	}
	return c
}

func texts(name string, vals ...string) *j.StringColumn {
	c := j.NewStringColumn(name, 0)
	for _, v := range vals {
		if v == "" {
			c.AppendNull()
		} else {
			c.Append(v)
		}
	}
	return c
}

func ints(name string, vals ...int64) *j.IntColumn {
	c := j.NewIntColumn(name, 0)
	for _, v := range vals {
		if v < 0 {
			c.AppendNull()
		} else {
			c.Append(v)
		}
	}
	return c
}

func analysisFor(method analyze.Method, missing int, pct float64) *analyze.ColumnAnalysis {
	return &analyze.ColumnAnalysis{
		MissingCount:      missing,
		MissingPercentage: pct,
		Strategy:          analyze.Strategy{Method: method, Reasoning: "test"},
	}
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func run(t *testing.T, f *j.Frame, r *analyze.Report, opt Options) (*j.Frame, *Log) {
	t.Helper()
	out, log, err := New(nil).Execute(context.Background(), f, r, opt)
	require.NoError(t, err)
	return out, log
}

func TestExecuteScenarios(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a symmetric numeric column with 10% missing", t, func() {
		f, _ := j.FromColumns(symmetricWithNulls("x", 10, 10))
		r := analyze.Analyze(f, analyze.DefaultOptions())
		out, log, err := New(nil).Execute(ctx, f, r, DefaultOptions())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("the gaps are filled with the mean", func() {
			col, _ := out.ColumnByName("x")
			convey.So(j.NullCount(col), convey.ShouldEqual, 0)
			v, _ := col.(*j.FloatColumn).Get(95)
			convey.So(v, convey.ShouldAlmostEqual, 5.0)
			convey.So(log.Columns["x"].Action, convey.ShouldEqual, "Imputed using mean")
			convey.So(*log.Columns["x"].MissingAfter, convey.ShouldEqual, 0)
			convey.So(log.ColumnsImputed, convey.ShouldEqual, 1)
		})
		convey.Convey("the input frame is untouched", func() {
			col, _ := f.ColumnByName("x")
			convey.So(j.NullCount(col), convey.ShouldEqual, 10)
		})
	})

	convey.Convey("Given a sequential id column with 5 missing of 1000", t, func() {
		ids := j.NewIntColumn("id", 0)
		vals := j.NewFloatColumn("v", 0)
		for i := 1; i <= 1000; i++ {
			if i%200 == 0 {
				ids.AppendNull()
			} else {
				ids.Append(int64(i))
			}
			vals.Append(float64(i % 7))
		}
		f, _ := j.FromColumns(ids, vals)
		r := analyze.Analyze(f, analyze.DefaultOptions())
		convey.So(r.Columns["id"].Strategy.Method, convey.ShouldEqual, analyze.MethodDropRows)
		out, log, err := New(nil).Execute(ctx, f, r, DefaultOptions())
		convey.So(err, convey.ShouldBeNil)
		convey.So(out.Rows(), convey.ShouldEqual, 995)
		convey.So(log.RowsDropped, convey.ShouldEqual, 5)
		convey.So(log.FinalRows, convey.ShouldEqual, 995)
		convey.So(log.Columns["id"].Action, convey.ShouldEqual, "Marked rows for deletion")
		convey.So(log.Columns["id"].MissingAfter, convey.ShouldBeNil)
		col, _ := out.ColumnByName("id")
		convey.So(j.NullCount(col), convey.ShouldEqual, 0)
	})

	convey.Convey("Given a low-cardinality text column with 40% missing", t, func() {
		c := j.NewStringColumn("grade", 0)
		for _, g := range []struct {
			v string
			n int
		}{{"A", 30}, {"B", 18}, {"C", 12}, {"", 40}} {
			for i := 0; i < g.n; i++ {
				if g.v == "" {
					c.AppendNull()
				} else {
					c.Append(g.v)
				}
			}
		}
		f, _ := j.FromColumns(c)
		r := analyze.Analyze(f, analyze.DefaultOptions())
		out, log, err := New(nil).Execute(ctx, f, r, DefaultOptions())
		convey.So(err, convey.ShouldBeNil)
		col, _ := out.ColumnByName("grade")
		convey.So(j.NullCount(col), convey.ShouldEqual, 0)
		v, _ := col.(*j.StringColumn).Get(99)
		convey.So(v, convey.ShouldEqual, "A")
		convey.So(log.Columns["grade"].Action, convey.ShouldEqual, "Imputed using mode")
	})

	convey.Convey("Given a column that is 80% missing", t, func() {
		sparse := symmetricWithNulls("sparse", 2, 72)
		full := symmetricWithNulls("full", 10, 0)
		f, _ := j.FromColumns(sparse, full)
		r := analyze.Analyze(f, analyze.DefaultOptions())
		out, log, err := New(nil).Execute(ctx, f, r, DefaultOptions())
		convey.So(err, convey.ShouldBeNil)
		_, ok := out.ColumnByName("sparse")
		convey.So(ok, convey.ShouldBeFalse)
		convey.So(out.Cols(), convey.ShouldEqual, 1)
		convey.So(log.ColumnsDropped, convey.ShouldEqual, 1)
		convey.So(log.Columns["sparse"].Action, convey.ShouldEqual, "Dropped column (80.0% missing)")
		convey.So(log.Columns["sparse"].MissingAfter, convey.ShouldBeNil)
	})
}

func TestDropOrFlagBelowLimitFlags(t *testing.T) {
	f, _ := j.FromColumns(texts("s", "a", "", "", "b", "", "c"))
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"s": analysisFor(analyze.MethodDropOrFlag, 3, 50.0),
	}}
	out, log := run(t, f, r, DefaultOptions())
	assert.Equal(t, "Flagged for review (50.0% missing)", log.Columns["s"].Action)
	col, ok := out.ColumnByName("s")
	require.True(t, ok)
	assert.Equal(t, 3, j.NullCount(col))
	assert.Equal(t, 0, log.ColumnsDropped)
}

func TestMeanOnIntColumnKeepsFraction(t *testing.T) {
	f, _ := j.FromColumns(ints("n", 2, 1, 3, -1, 3, 2, 4, 3, 4, 4))
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"n": analysisFor(analyze.MethodMean, 1, 10.0),
	}}
	out, log := run(t, f, r, DefaultOptions())
	assert.Equal(t, "Imputed using mean", log.Columns["n"].Action)
	col, _ := out.ColumnByName("n")
	require.Equal(t, j.KindFloat, col.Kind())
	assert.Equal(t, "2.888888888888889", j.FormatCell(col, 3))
	orig, _ := f.ColumnByName("n")
	assert.Equal(t, j.KindInt, orig.Kind())
}

func TestZeroDropLimitDropsEveryFlaggedColumn(t *testing.T) {
	f, _ := j.FromColumns(texts("s", "a", "", "", "b", "", "c"), texts("keep", "a", "b", "c", "d", "e", "f"))
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"s": analysisFor(analyze.MethodDropOrFlag, 3, 50.0),
	}}
	opt := DefaultOptions()
	opt.DropColumnPct = 0
	out, log := run(t, f, r, opt)
	assert.Equal(t, "Dropped column (50.0% missing)", log.Columns["s"].Action)
	_, ok := out.ColumnByName("s")
	assert.False(t, ok)
	assert.Equal(t, 1, log.ColumnsDropped)
}

func TestRowMaskIsUnionOfDropRowsColumns(t *testing.T) {
	f, _ := j.FromColumns(
		ints("a", 1, -1, 3, 4, 5, 6),
		ints("b", 1, 2, 3, -1, 5, -1),
		texts("keep", "", "x", "y", "z", "w", "v"),
	)
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"a":    analysisFor(analyze.MethodDropRows, 1, 100.0/6),
		"b":    analysisFor(analyze.MethodDropRows, 2, 200.0/6),
		"keep": analysisFor(analyze.ConstantOf("none"), 1, 100.0/6),
	}}
	out, log := run(t, f, r, DefaultOptions())
	assert.Equal(t, 3, out.Rows())
	assert.Equal(t, 3, log.RowsDropped)
	keep, _ := out.ColumnByName("keep")
	var got []string
	for i := 0; i < keep.Len(); i++ {
		got = append(got, j.FormatCell(keep, i))
	}
	assert.Equal(t, []string{"none", "y", "w"}, got)
	assert.Equal(t, "Filled with constant: none", log.Columns["keep"].Action)
	require.NotNil(t, log.Columns["keep"].MissingAfter)
	assert.Equal(t, 0, *log.Columns["keep"].MissingAfter)
}

func TestMissingIndicators(t *testing.T) {
	x := j.NewFloatColumn("x", 0)
	x.Append(1)
	x.AppendNull()
	x.Append(3)
	x.AppendNull()
	f, _ := j.FromColumns(ints("id", 1, 2, -1, 4), x)
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"id": analysisFor(analyze.MethodDropRows, 1, 25),
		"x":  analysisFor(analyze.MethodMean, 2, 50),
	}}
	opt := DefaultOptions()
	opt.CreateMissingIndicators = true
	out, log := run(t, f, r, opt)

	assert.Equal(t, 4, out.Cols())
	assert.Equal(t, 3, out.Rows())
	ind, ok := out.ColumnByName("x" + IndicatorSuffix)
	require.True(t, ok)
	assert.Equal(t, j.KindBool, ind.Kind())
	var pattern []bool
	for i := 0; i < ind.Len(); i++ {
		v, _ := ind.(*j.BoolColumn).Get(i)
		pattern = append(pattern, v)
	}
	// row 2 is gone with its missing id; x was missing at rows 1 and 3
	assert.Equal(t, []bool{false, true, true}, pattern)
	xc, _ := out.ColumnByName("x")
	assert.Equal(t, 0, j.NullCount(xc))
	assert.Equal(t, 1, log.ColumnsImputed)
}

func TestUnknownMethodAndMissingColumnWarn(t *testing.T) {
	f, _ := j.FromColumns(texts("s", "a", "", "a"))
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"s":    analysisFor("magic", 1, 33.3),
		"gone": analysisFor(analyze.MethodMean, 4, 40),
	}}
	logger, logs := observed()
	out, log, err := New(logger).Execute(context.Background(), f, r, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, `Skipped: unknown method "magic"`, log.Columns["s"].Action)
	assert.Nil(t, log.Columns["s"].MissingAfter)
	assert.Equal(t, "Skipped: column not found", log.Columns["gone"].Action)
	assert.Len(t, log.Warnings, 2)
	assert.Equal(t, 2, logs.FilterMessage("column skipped").Len())
	col, _ := out.ColumnByName("s")
	assert.Equal(t, 1, j.NullCount(col))
	assert.Equal(t, []string{"s", "gone"}, log.Order())
}

func TestFailedColumnDoesNotStopOthers(t *testing.T) {
	f, _ := j.FromColumns(texts("s", "a", "", "b"), texts("t", "a", "", "a"))
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"s": analysisFor(analyze.MethodMean, 1, 33.3),
		"t": analysisFor(analyze.MethodMode, 1, 33.3),
	}}
	out, log := run(t, f, r, DefaultOptions())
	assert.Contains(t, log.Columns["s"].Action, "Skipped:")
	assert.Nil(t, log.Columns["s"].MissingAfter)
	assert.Equal(t, "Imputed using mode", log.Columns["t"].Action)
	tcol, _ := out.ColumnByName("t")
	assert.Equal(t, 0, j.NullCount(tcol))
	assert.Len(t, log.Warnings, 1)
}

func TestKNNBatch(t *testing.T) {
	x := j.NewFloatColumn("x", 0)
	y := j.NewFloatColumn("y", 0)
	for i := 0; i < 10; i++ {
		x.Append(float64(i))
		y.Append(float64(2 * i))
	}
	x.SetNull(2)
	y.SetNull(7)
	f, _ := j.FromColumns(x, y, texts("label", "a", "", "b", "c", "d", "e", "f", "g", "h", "i"))
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"x":     analysisFor(analyze.MethodKNN, 1, 10),
		"y":     analysisFor(analyze.MethodKNN, 1, 10),
		"label": analysisFor(analyze.MethodKNN, 1, 10),
	}}
	out, log := run(t, f, r, DefaultOptions())

	xc, _ := out.ColumnByName("x")
	yc, _ := out.ColumnByName("y")
	xv, _ := xc.(*j.FloatColumn).Get(2)
	yv, _ := yc.(*j.FloatColumn).Get(7)
	assert.InDelta(t, 2.6, xv, 1e-12)
	assert.InDelta(t, 12.8, yv, 1e-12)
	assert.Equal(t, "Imputed using KNN", log.Columns["x"].Action)
	assert.Equal(t, "Skipped KNN imputation (non-numeric column)", log.Columns["label"].Action)
	assert.Nil(t, log.Columns["label"].MissingAfter)
	assert.Equal(t, 2, log.ColumnsImputed)
}

func TestNoDataGrowth(t *testing.T) {
	f, _ := j.FromColumns(symmetricWithNulls("a", 5, 5), symmetricWithNulls("b", 4, 14), texts("c", make([]string, 50)...))
	r := analyze.Analyze(f, analyze.DefaultOptions())
	for _, indicators := range []bool{false, true} {
		opt := DefaultOptions()
		opt.CreateMissingIndicators = indicators
		out, log := run(t, f, r, opt)
		assert.LessOrEqual(t, out.Rows(), f.Rows())
		limit := f.Cols()
		if indicators {
			limit += len(r.Columns)
		}
		assert.LessOrEqual(t, out.Cols(), limit)
		assert.Equal(t, log.OriginalRows-log.FinalRows, log.RowsDropped)
		for name, e := range log.Columns {
			if e.MissingAfter != nil {
				assert.LessOrEqual(t, *e.MissingAfter, e.MissingBefore, name)
			}
		}
	}
}

func TestNilInputs(t *testing.T) {
	_, _, err := New(nil).Execute(context.Background(), nil, &analyze.Report{}, DefaultOptions())
	assert.Error(t, err)
	f, _ := j.FromColumns(ints("a", 1))
	_, _, err = New(nil).Execute(context.Background(), f, nil, DefaultOptions())
	assert.Error(t, err)
}

func TestLogJSON(t *testing.T) {
	g, _ := j.FromColumns(ints("id", 1, -1, 3), ints("n", 1, -1, 3))
	r := &analyze.Report{Columns: map[string]*analyze.ColumnAnalysis{
		"id": analysisFor(analyze.MethodDropRows, 1, 33.3),
		"n":  analysisFor(analyze.MethodMedian, 1, 33.3),
	}}
	opt := DefaultOptions()
	opt.InputFile = "in.csv"
	_, log := run(t, g, r, opt)

	path := filepath.Join(t.TempDir(), "out_report.json")
	require.NoError(t, log.SaveJSON(path))
	var buf bytes.Buffer
	require.NoError(t, log.WriteJSON(&buf))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "in.csv", doc["input_file"])
	assert.NotContains(t, doc, "output_file")
	entries := doc["imputation_log"].(map[string]any)
	assert.NotContains(t, entries["id"].(map[string]any), "missing_after")
	assert.Contains(t, entries["n"].(map[string]any), "missing_after")

	buf.Reset()
	require.NoError(t, log.WriteText(&buf))
	assert.Contains(t, buf.String(), "IMPUTATION REPORT")
	assert.Contains(t, buf.String(), "Rows dropped: 1")
}
