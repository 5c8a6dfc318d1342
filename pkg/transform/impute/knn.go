package impute

import (
	"context"
	"math"
	"sort"

	adapters "github.com/wdm0006/gapfill/adapters/golearn"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// DefaultNeighbors is the neighbour count used when KNN.Neighbors is unset.
const DefaultNeighbors = 5

// KNN fills the numeric Columns jointly from their nearest neighbours.
//
// Rows are compared with the nan-euclidean distance over the batch columns:
// sqrt(F/P * sum of squared differences) across the P coordinates both rows
// hold, F being the number of batch columns. For each column a missing cell
// takes the unweighted mean of the Neighbors closest rows that hold that
// column. A row sharing no coordinate with any donor takes the column mean.
// Distances are always measured on the values as they were before the
// batch, so no column sees another column's fills.
//
// Non-numeric or absent columns are ignored, as are columns with no values.
type KNN struct {
	Columns   []string
	Neighbors int
}

func (t *KNN) Name() string { return "impute_knn" }

func (t *KNN) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	cols := NumericColumns(f, t.Columns)
	if len(cols) == 0 || f.Rows() == 0 {
		return f, nil
	}
	k := t.Neighbors
	if k <= 0 {
		k = DefaultNeighbors
	}
	grid, err := adapters.ToDenseInstances(f, cols...)
	if err != nil {
		return f, err
	}
	rows, width := grid.Dims()

	type fillCell struct {
		row, col int
		v        float64
	}
	var fills []fillCell
	for c := 0; c < width; c++ {
		if err := ctx.Err(); err != nil {
			return f, err
		}
		var receivers []int
		donors := 0
		var sum float64
		err := grid.EachRow(func(r int, vals []float64) bool {
			if math.IsNaN(vals[c]) {
				receivers = append(receivers, r)
			} else {
				donors++
				sum += vals[c]
			}
			return true
		})
		if err != nil {
			return f, err
		}
		if donors == 0 || donors == rows {
			continue
		}
		mean := sum / float64(donors)
		kk := k
		if kk > donors {
			kk = donors
		}
		for _, r := range receivers {
			v, err := nearestMean(grid, grid.Row(r), c, kk, mean)
			if err != nil {
				return f, err
			}
			fills = append(fills, fillCell{r, c, v})
		}
	}
	for _, fc := range fills {
		grid.Set(fc.row, fc.col, fc.v)
	}
	if _, err := grid.FillNulls(f); err != nil {
		return f, err
	}
	return f, nil
}

type neighbour struct {
	row  int
	dist float64
	v    float64
}

// nearestMean averages column c over the k closest rows of grid that hold c,
// measured from target.
func nearestMean(grid *adapters.Grid, target []float64, c, k int, fallback float64) (float64, error) {
	var cands []neighbour
	err := grid.EachRow(func(r int, vals []float64) bool {
		if math.IsNaN(vals[c]) {
			return true
		}
		if dist, ok := nanEuclidean(target, vals); ok {
			cands = append(cands, neighbour{r, dist, vals[c]})
		}
		return true
	})
	if err != nil || len(cands) == 0 {
		return fallback, err
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
	if len(cands) > k {
		cands = cands[:k]
	}
	var sum float64
	for _, n := range cands {
		sum += n.v
	}
	return sum / float64(len(cands)), nil
}

// nanEuclidean is the distance between rows a and b over the coordinates both
// hold, scaled up to the full width. ok is false when they share none.
func nanEuclidean(a, b []float64) (float64, bool) {
	var sq float64
	present := 0
	for i, x := range a {
		y := b[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		sq += (x - y) * (x - y)
		present++
	}
	if present == 0 {
		return 0, false
	}
	return math.Sqrt(float64(len(a)) / float64(present) * sq), true
}

// NumericColumns filters names down to the numeric columns present in f,
// keeping their order and dropping duplicates.
func NumericColumns(f *j.Frame, names []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, name := range names {
		col, ok := f.ColumnByName(name)
		if !ok || seen[name] || !col.Kind().Numeric() {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
