package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

// renderRecords writes a result set in the requested format.
func renderRecords(w io.Writer, records *thanosql.Records, format string) error {
	if records == nil {
		_, _ = fmt.Fprintln(w, "(no result set)")
		return nil
	}

	switch format {
	case "json":
		return renderJSON(w, records.Data)
	case "csv":
		frame := records.Frame()
		return renderCSV(w, frame.Columns, frame.Rows)
	case "md", "markdown":
		frame := records.Frame()
		return renderMarkdown(w, frame.Columns, frame.Rows)
	default:
		return renderTable(w, records)
	}
}

func renderTable(w io.Writer, records *thanosql.Records) error {
	frame := records.Frame()
	if len(frame.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(frame.Columns))
	for i, col := range frame.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, values := range frame.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(frame.Rows), records.Total)
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderCSV(w io.Writer, cols []string, rows [][]any) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, values := range rows {
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = escapeCSV(formatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, values := range rows {
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = formatValue(v)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
