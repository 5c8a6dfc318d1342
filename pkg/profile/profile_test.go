package profile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	j "github.com/wdm0006/gapfill/pkg/janitor"
)

func floats(name string, vals ...float64) *j.FloatColumn {
	c := j.NewFloatColumn(name, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			c.SetNull(i)
			continue
		}
		c.Set(i, v)
	}
	return c
}

func TestNumericProfile(t *testing.T) {
	nan := math.NaN()
	p := Column(floats("x", 1, nan, 1, 1, 10), DefaultTopK)
	assert.Equal(t, 4, p.Count)
	assert.Equal(t, 1, p.Nulls)
	assert.Equal(t, 2, p.Distinct)
	assert.Equal(t, 0.5, p.UniqueRatio())
	assert.Equal(t, 20.0, p.MissingPct())
	require.NotNil(t, p.Num)
	assert.InDelta(t, 3.25, p.Num.Mean, 1e-12)
	assert.Equal(t, 1.0, p.Num.Median)
	assert.Equal(t, 1.0, p.Num.Min)
	assert.Equal(t, 10.0, p.Num.Max)
	assert.InDelta(t, 4.5, p.Num.Std, 1e-12)
	assert.Greater(t, p.Num.Skew, 0.0)
	assert.True(t, p.Num.Monotonic)
	assert.Empty(t, p.Top)
}

func TestSmallSamplesHaveNaNStats(t *testing.T) {
	p := Column(floats("x", 4), DefaultTopK)
	assert.True(t, math.IsNaN(p.Num.Std))
	assert.True(t, math.IsNaN(p.Num.Skew))

	p = Column(floats("x", 2, 2, 2), DefaultTopK)
	assert.Equal(t, 0.0, p.Num.Std)
	assert.True(t, math.IsNaN(p.Num.Skew), "zero variance")

	p = Column(floats("x", math.NaN()), DefaultTopK)
	assert.Nil(t, p.Num)
	assert.Equal(t, 0.0, p.UniqueRatio())
}

func TestTopValuesTieByFirstAppearance(t *testing.T) {
	c := j.NewStringColumn("s", 7)
	for i, v := range []string{"b", "a", "c", "a", "b", "", "d"} {
		if v == "" {
			c.SetNull(i)
			continue
		}
		c.Set(i, v)
	}
	p := Column(c, 3)
	assert.Nil(t, p.Num)
	assert.Equal(t, 4, p.Distinct)
	assert.Equal(t, []ValueCount{{"b", 2}, {"a", 2}, {"c", 1}}, p.Top)
}

func TestMedian(t *testing.T) {
	vals := []float64{3, 1, 2, 10}
	assert.Equal(t, 2.5, Median(vals))
	assert.Equal(t, []float64{3, 1, 2, 10}, vals)
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestTextAndJSON(t *testing.T) {
	s := j.NewStringColumn("city", 2)
	s.Set(0, "Oslo")
	s.SetNull(1)
	f, err := j.FromColumns(floats("x", 1, 2), s)
	require.NoError(t, err)
	ps := Frame(f, DefaultTopK)

	txt := Text(ps)
	assert.Contains(t, txt, "- x (float): count=2 nulls=0")
	assert.Contains(t, txt, "- city (string): count=1 nulls=1 (50.00%)")
	assert.Contains(t, txt, `"Oslo": 1`)

	b, err := json.Marshal(JSON(f.Rows(), ps))
	require.NoError(t, err)
	var doc struct {
		Rows    int `json:"rows"`
		Columns []map[string]any
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, 2, doc.Rows)
	require.Len(t, doc.Columns, 2)
	assert.NotContains(t, doc.Columns[0], "skewness")
	assert.Equal(t, 1.5, doc.Columns[0]["mean"])
	assert.Equal(t, map[string]any{"Oslo": 1.0}, doc.Columns[1]["most_common"])
}
