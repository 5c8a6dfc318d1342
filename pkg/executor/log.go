package executor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/wdm0006/gapfill/pkg/analyze"
)

// Entry records what happened to one analyzed column.
type Entry struct {
	Method        analyze.Method `json:"method"`
	MissingBefore int            `json:"missing_before"`
	// MissingAfter is set only when values were substituted in place.
	MissingAfter *int   `json:"missing_after,omitempty"`
	Action       string `json:"action"`
	Reasoning    string `json:"reasoning"`
}

// Log summarizes an Execute run.
type Log struct {
	InputFile      string            `json:"input_file"`
	OutputFile     string            `json:"output_file,omitempty"`
	OriginalRows   int               `json:"original_rows"`
	FinalRows      int               `json:"final_rows"`
	RowsDropped    int               `json:"rows_dropped"`
	ColumnsDropped int               `json:"columns_dropped"`
	ColumnsImputed int               `json:"columns_imputed"`
	Columns        map[string]*Entry `json:"imputation_log"`
	Warnings       []string          `json:"warnings,omitempty"`

	order []string
}

func (l *Log) entry(col string, e *Entry) *Entry {
	l.Columns[col] = e
	l.order = append(l.order, col)
	return e
}

// Order lists logged columns in processing order; logs read back from JSON
// fall back to sorted names.
func (l *Log) Order() []string {
	if len(l.order) == len(l.Columns) {
		return l.order
	}
	names := make([]string, 0, len(l.Columns))
	for name := range l.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Log) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// SaveJSON writes the log to path.
func (l *Log) SaveJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := l.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write imputation log: %w", err)
	}
	return f.Close()
}

// WriteText renders the log for people.
func (l *Log) WriteText(w io.Writer) error {
	rule := strings.Repeat("=", 80)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nIMPUTATION REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Input file: %s\n", l.InputFile)
	if l.OutputFile != "" {
		fmt.Fprintf(&b, "Output file: %s\n", l.OutputFile)
	}
	b.WriteString("\nData dimensions:\n")
	fmt.Fprintf(&b, "  - Original rows: %d\n", l.OriginalRows)
	fmt.Fprintf(&b, "  - Final rows: %d\n", l.FinalRows)
	if l.RowsDropped > 0 {
		fmt.Fprintf(&b, "  - Rows dropped: %d\n", l.RowsDropped)
	}
	b.WriteString("\nImputation summary:\n")
	fmt.Fprintf(&b, "  - Columns imputed: %d\n", l.ColumnsImputed)
	if l.ColumnsDropped > 0 {
		fmt.Fprintf(&b, "  - Columns dropped: %d\n", l.ColumnsDropped)
	}

	if len(l.Columns) > 0 {
		b.WriteString("\n")
		table := tablewriter.NewWriter(&b)
		table.SetHeader([]string{"Column", "Method", "Missing before", "Missing after", "Action"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, name := range l.Order() {
			e := l.Columns[name]
			after := "-"
			if e.MissingAfter != nil {
				after = fmt.Sprint(*e.MissingAfter)
			}
			table.Append([]string{name, string(e.Method), fmt.Sprint(e.MissingBefore), after, e.Action})
		}
		table.Render()
		for _, name := range l.Order() {
			fmt.Fprintf(&b, "\nColumn: %s\n   Reasoning: %s\n", name, l.Columns[name].Reasoning)
		}
	}
	if len(l.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, msg := range l.Warnings {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", rule)
	_, err := io.WriteString(w, b.String())
	return err
}
