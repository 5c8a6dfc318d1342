package analyze

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

var rule = strings.Repeat("=", 80)

// WriteText renders a human-readable report.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nMISSING VALUES ANALYSIS REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "File: %s\n", r.File)
	fmt.Fprintf(&b, "Dimensions: %d rows x %d columns\n\n", r.TotalRows, r.TotalColumns)
	b.WriteString("Overall Missing Data:\n")
	fmt.Fprintf(&b, "  - Missing cells: %d / %d\n", r.MissingCells, r.TotalCells)
	fmt.Fprintf(&b, "  - Missing percentage: %.2f%%\n", r.MissingPercentage)
	fmt.Fprintf(&b, "  - Columns with missing values: %d\n\n", r.ColumnsWithMissing)

	if len(r.Columns) == 0 {
		b.WriteString("No missing values found in the dataset.\n")
		fmt.Fprintf(&b, "\n%s\n", rule)
		_, err := io.WriteString(w, b.String())
		return err
	}

	order := r.Order()
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Column", "Type", "Detected", "Missing", "Missing %", "Method"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, name := range order {
		ca := r.Columns[name]
		table.Append([]string{
			name,
			ca.DataType,
			string(ca.DetectedType),
			strconv.Itoa(ca.MissingCount),
			fmt.Sprintf("%.2f", ca.MissingPercentage),
			string(ca.Strategy.Method),
		})
	}
	table.Render()

	for _, name := range order {
		ca := r.Columns[name]
		fmt.Fprintf(&b, "\nColumn: %s\n", name)
		fmt.Fprintf(&b, "   Type: %s (detected as: %s)\n", ca.DataType, ca.DetectedType)
		fmt.Fprintf(&b, "   Missing: %d / %d (%.2f%%)\n", ca.MissingCount, ca.TotalValues, ca.MissingPercentage)
		writeStatistics(&b, ca.Statistics)
		fmt.Fprintf(&b, "   Recommended: %s\n", ca.Strategy.Method)
		fmt.Fprintf(&b, "      Reason: %s\n", ca.Strategy.Reasoning)
		if ca.Strategy.Alternative != nil {
			fmt.Fprintf(&b, "      Alternative: %s\n", *ca.Strategy.Alternative)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", rule)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeStatistics(b *strings.Builder, s Statistics) {
	switch {
	case s.NumericStatistics != nil:
		n := s.NumericStatistics
		b.WriteString("   Statistics:\n")
		fmt.Fprintf(b, "     - mean: %.4f\n", n.Mean)
		fmt.Fprintf(b, "     - median: %.4f\n", n.Median)
		if n.Std != nil {
			fmt.Fprintf(b, "     - std: %.4f\n", *n.Std)
		}
		fmt.Fprintf(b, "     - min: %.4f\n", n.Min)
		fmt.Fprintf(b, "     - max: %.4f\n", n.Max)
	case s.CategoricalStatistics != nil:
		c := s.CategoricalStatistics
		b.WriteString("   Statistics:\n")
		fmt.Fprintf(b, "     - unique_values: %d\n", c.UniqueValues)
		if len(c.MostCommon) > 0 {
			b.WriteString("     - most_common:\n")
			for _, vc := range sortedCounts(c.MostCommon) {
				fmt.Fprintf(b, "       • %s: %d\n", vc.value, vc.count)
			}
		}
	}
}

type valueCount struct {
	value string
	count int
}

func sortedCounts(m map[string]int) []valueCount {
	out := make([]valueCount, 0, len(m))
	for v, n := range m {
		out = append(out, valueCount{v, n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].count != out[b].count {
			return out[a].count > out[b].count
		}
		return out[a].value < out[b].value
	})
	return out
}
