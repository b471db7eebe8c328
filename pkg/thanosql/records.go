package thanosql

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Records is the uniform wrapper for any row-returning response: query
// execution results and table record listings both decode into it. Total is
// the full matching count on the engine side and is independent of any
// limit/offset applied to Data.
type Records struct {
	Data  []Row
	Total int
}

// UnmarshalJSON accepts both wire forms the engine uses: a bare array of
// rows, and the {"records": [...], "total": n} wrapper.
func (r *Records) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []Row
		if err := json.Unmarshal(b, &rows); err != nil {
			return err
		}
		r.Data = rows
		r.Total = len(rows)
		return nil
	}

	var wrapper struct {
		Records []Row `json:"records"`
		Total   int   `json:"total"`
	}
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return err
	}
	r.Data = wrapper.Records
	r.Total = wrapper.Total
	return nil
}

func (r Records) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Records []Row `json:"records"`
		Total   int   `json:"total"`
	}{Records: r.Data, Total: r.Total})
}

// Frame is a column-oriented view of a row set. Column order follows first
// appearance across the rows; missing cells are nil.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// Frame converts Data into a columnar table. The conversion is pure: it is
// re-derived from Data on every call, never cached, and never mutates the
// receiver.
func (r *Records) Frame() *Frame {
	// JSON object key order is lost in a Go map, so per-row keys are
	// sorted before accumulating to keep the column order deterministic.
	var columns []string
	seen := make(map[string]bool)
	for _, row := range r.Data {
		for _, col := range sortedKeys(row) {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}

	rows := make([][]any, len(r.Data))
	for i, row := range r.Data {
		cells := make([]any, len(columns))
		for j, col := range columns {
			if v, ok := row[col]; ok {
				cells[j] = v
			}
		}
		rows[i] = cells
	}

	return &Frame{Columns: columns, Rows: rows}
}

func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
