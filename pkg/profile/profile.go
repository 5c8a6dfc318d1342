package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	j "github.com/wdm0006/gapfill/pkg/janitor"
	"gonum.org/v1/gonum/stat"
)

// DefaultTopK is the number of most frequent values kept per column.
const DefaultTopK = 5

type NumStats struct {
	Mean   float64
	Median float64
	// Std is the sample standard deviation; NaN with fewer than two values.
	Std float64
	Min float64
	Max float64
	// Skew is the adjusted Fisher-Pearson skewness; NaN when undefined.
	Skew float64
	// Monotonic is true when the non-null values never decrease in row order.
	Monotonic bool
}

type ValueCount struct {
	Value string
	Count int
}

type ColumnProfile struct {
	Name     string
	Kind     j.Kind
	Count    int
	Nulls    int
	Distinct int
	Num      *NumStats
	Top      []ValueCount
}

// Rows is the column length including nulls.
func (p ColumnProfile) Rows() int { return p.Count + p.Nulls }

// UniqueRatio is distinct non-null values over non-null values.
func (p ColumnProfile) UniqueRatio() float64 {
	if p.Count == 0 {
		return 0
	}
	return float64(p.Distinct) / float64(p.Count)
}

// MissingPct is the share of null cells, in percent.
func (p ColumnProfile) MissingPct() float64 {
	if p.Rows() == 0 {
		return 0
	}
	return float64(p.Nulls) / float64(p.Rows()) * 100
}

// Column profiles a single column.
func Column(c j.Column, topK int) ColumnProfile {
	cp := ColumnProfile{Name: c.Name(), Kind: c.Kind()}
	if c.Kind().Numeric() {
		vals := NumericValues(c)
		cp.Count = len(vals)
		cp.Nulls = c.Len() - len(vals)
		cp.Distinct = distinctFloats(vals)
		if len(vals) > 0 {
			cp.Num = numStats(vals)
		}
		return cp
	}
	freqs := map[string]int{}
	first := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			cp.Nulls++
			continue
		}
		v := j.FormatCell(c, i)
		cp.Count++
		if _, seen := first[v]; !seen {
			first[v] = i
		}
		freqs[v]++
	}
	cp.Distinct = len(freqs)
	cp.Top = topValues(freqs, first, topK)
	return cp
}

// Frame profiles every column of f in schema order.
func Frame(f *j.Frame, topK int) []ColumnProfile {
	out := make([]ColumnProfile, 0, f.Cols())
	for _, c := range f.Columns() {
		out = append(out, Column(c, topK))
	}
	return out
}

// NumericValues returns the non-null values of a numeric column in row order.
func NumericValues(c j.Column) []float64 {
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := j.FloatAt(c, i); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// Median of vals; vals is not modified.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func numStats(vals []float64) *NumStats {
	ns := &NumStats{
		Mean:      stat.Mean(vals, nil),
		Median:    Median(vals),
		Std:       math.NaN(),
		Min:       math.Inf(1),
		Max:       math.Inf(-1),
		Skew:      math.NaN(),
		Monotonic: true,
	}
	for i, v := range vals {
		if v < ns.Min {
			ns.Min = v
		}
		if v > ns.Max {
			ns.Max = v
		}
		if i > 0 && v < vals[i-1] {
			ns.Monotonic = false
		}
	}
	if len(vals) >= 2 {
		ns.Std = stat.StdDev(vals, nil)
	}
	if len(vals) >= 3 && ns.Std > 0 {
		ns.Skew = stat.Skew(vals, nil)
	}
	return ns
}

func distinctFloats(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// topValues orders by count, ties by first appearance.
func topValues(freqs map[string]int, first map[string]int, k int) []ValueCount {
	arr := make([]ValueCount, 0, len(freqs))
	for v, n := range freqs {
		arr = append(arr, ValueCount{Value: v, Count: n})
	}
	sort.Slice(arr, func(a, b int) bool {
		if arr[a].Count != arr[b].Count {
			return arr[a].Count > arr[b].Count
		}
		return first[arr[a].Value] < first[arr[b].Value]
	})
	if k > 0 && k < len(arr) {
		arr = arr[:k]
	}
	return arr
}

// Text renders profiles as a plain listing.
func Text(profiles []ColumnProfile) string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range profiles {
		b.WriteString(fmt.Sprintf("- %s (%v): count=%d nulls=%d (%.2f%%) distinct=%d", cp.Name, cp.Kind, cp.Count, cp.Nulls, cp.MissingPct(), cp.Distinct))
		if cp.Num != nil {
			b.WriteString(fmt.Sprintf(" min=%.6g max=%.6g mean=%.6g median=%.6g std=%.6g skew=%.4g", cp.Num.Min, cp.Num.Max, cp.Num.Mean, cp.Num.Median, cp.Num.Std, cp.Num.Skew))
		}
		b.WriteString("\n")
		for _, vc := range cp.Top {
			b.WriteString(fmt.Sprintf("  • %q: %d\n", vc.Value, vc.Count))
		}
	}
	return b.String()
}

type JSONProfile struct {
	Rows    int          `json:"rows"`
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	NonNull    int            `json:"non_null_count"`
	Nulls      int            `json:"null_count"`
	NullPct    float64        `json:"null_percentage"`
	Unique     int            `json:"unique_values"`
	Mean       *float64       `json:"mean,omitempty"`
	Median     *float64       `json:"median,omitempty"`
	Std        *float64       `json:"std,omitempty"`
	Min        *float64       `json:"min,omitempty"`
	Max        *float64       `json:"max,omitempty"`
	Skew       *float64       `json:"skewness,omitempty"`
	MostCommon map[string]int `json:"most_common,omitempty"`
}

// JSON converts profiles into a serializable document. NaN statistics are omitted.
func JSON(rows int, profiles []ColumnProfile) JSONProfile {
	out := JSONProfile{Rows: rows, Columns: make([]JSONColumn, 0, len(profiles))}
	for _, cp := range profiles {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String(), NonNull: cp.Count, Nulls: cp.Nulls, NullPct: cp.MissingPct(), Unique: cp.Distinct}
		if cp.Num != nil {
			jc.Mean = Finite(cp.Num.Mean)
			jc.Median = Finite(cp.Num.Median)
			jc.Std = Finite(cp.Num.Std)
			jc.Min = Finite(cp.Num.Min)
			jc.Max = Finite(cp.Num.Max)
			jc.Skew = Finite(cp.Num.Skew)
		}
		if len(cp.Top) > 0 {
			jc.MostCommon = make(map[string]int, len(cp.Top))
			for _, vc := range cp.Top {
				jc.MostCommon[vc.Value] = vc.Count
			}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}

// Finite returns &v, or nil for NaN and infinities.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
