// Package golearn lays numeric Frame columns out as a golearn
// base.DenseInstances grid and copies values back into the Frame.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"
	j "github.com/wdm0006/gapfill/pkg/janitor"
)

// Grid is a rows x columns float grid backed by DenseInstances. Null cells
// are stored as NaN.
type Grid struct {
	inst  *base.DenseInstances
	specs []base.AttributeSpec
	names []string
	rows  int
}

// ToDenseInstances builds a grid from the named numeric columns of f.
func ToDenseInstances(f *j.Frame, columns ...string) (*Grid, error) {
	cols := make([]j.Column, len(columns))
	for i, name := range columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown column: %s", name)
		}
		if !col.Kind().Numeric() {
			return nil, fmt.Errorf("column %s is %v, not numeric", name, col.Kind())
		}
		cols[i] = col
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(cols))
	for i, name := range columns {
		specs[i] = inst.AddAttribute(base.NewFloatAttribute(name))
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}
	nan := base.PackFloatToBytes(math.NaN())
	for c, col := range cols {
		for r := 0; r < f.Rows(); r++ {
			if v, ok := j.FloatAt(col, r); ok {
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
			} else {
				inst.Set(specs[c], r, nan)
			}
		}
	}
	return &Grid{inst: inst, specs: specs, names: append([]string(nil), columns...), rows: f.Rows()}, nil
}

// Instances exposes the backing DenseInstances.
func (g *Grid) Instances() *base.DenseInstances { return g.inst }

func (g *Grid) Dims() (rows, cols int) { return g.rows, len(g.specs) }

func (g *Grid) Names() []string { return g.names }

// Value returns cell (row, col); ok is false for NaN cells.
func (g *Grid) Value(row, col int) (float64, bool) {
	v := base.UnpackBytesToFloat(g.inst.Get(g.specs[col], row))
	return v, !math.IsNaN(v)
}

func (g *Grid) Set(row, col int, v float64) {
	g.inst.Set(g.specs[col], row, base.PackFloatToBytes(v))
}

// Row returns one grid row, NaN for nulls.
func (g *Grid) Row(row int) []float64 {
	out := make([]float64, len(g.specs))
	for c := range out {
		out[c], _ = g.Value(row, c)
	}
	return out
}

// EachRow walks the rows in order through DenseInstances.MapOverRows, NaN for
// nulls. vals is reused between calls. fn returns false to stop.
func (g *Grid) EachRow(fn func(row int, vals []float64) bool) error {
	buf := make([]float64, len(g.specs))
	return g.inst.MapOverRows(g.specs, func(cells [][]byte, row int) (bool, error) {
		for c, cell := range cells {
			buf[c] = base.UnpackBytesToFloat(cell)
		}
		return fn(row, buf), nil
	})
}

// FillNulls writes grid values into the null cells of the matching frame
// columns. An int column receiving a fractional value becomes float. Returns
// the number of cells filled.
func (g *Grid) FillNulls(f *j.Frame) (int, error) {
	filled := 0
	for c, name := range g.names {
		col, ok := f.ColumnByName(name)
		if !ok {
			return filled, fmt.Errorf("unknown column: %s", name)
		}
		if col.Len() != g.rows {
			return filled, fmt.Errorf("column %s has %d rows, grid has %d", name, col.Len(), g.rows)
		}
		var rows []int
		var vals []float64
		for r := 0; r < g.rows; r++ {
			if !col.IsNull(r) {
				continue
			}
			if v, ok := g.Value(r, c); ok {
				rows = append(rows, r)
				vals = append(vals, v)
			}
		}
		col, err := f.WidenFor(name, vals...)
		if err != nil {
			return filled, err
		}
		for n, r := range rows {
			if err := j.SetFloat(col, r, vals[n]); err != nil {
				return filled, err
			}
			filled++
		}
	}
	return filled, nil
}
