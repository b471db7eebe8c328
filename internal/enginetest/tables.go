package enginetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// --- tables ---

func (e *Engine) listTables(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	schema := r.URL.Query().Get("schema")
	if schema != "" && !e.schemas[schema] {
		notFound(w, "schema %q does not exist", schema)
		return
	}

	var tables []tableDef
	for _, state := range e.tables {
		if schema == "" || state.Table.Schema == schema {
			tables = append(tables, state.Table)
		}
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Schema != tables[j].Schema {
			return tables[i].Schema < tables[j].Schema
		}
		return tables[i].Name < tables[j].Name
	})
	if tables == nil {
		tables = []tableDef{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (e *Engine) getTable(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	state, ok := e.tables[tableKey(schema, name)]
	if !ok {
		notFound(w, "table %q not found in schema %q", name, schema)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"table": state.Table})
}

func (e *Engine) createTable(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	if !e.schemas[schema] {
		notFound(w, "schema %q does not exist", schema)
		return
	}
	if _, exists := e.tables[tableKey(schema, name)]; exists {
		conflict(w, "table %q already exists in schema %q", name, schema)
		return
	}

	var body struct {
		Table *tableDef `json:"table"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	def := tableDef{Name: name, Schema: schema}
	if body.Table != nil {
		def.Columns = body.Table.Columns
		def.Constraints = body.Table.Constraints
	}
	e.tables[tableKey(schema, name)] = &tableState{Table: def}
	writeJSON(w, http.StatusOK, map[string]any{"message": "table created", "table_name": name})
}

func (e *Engine) updateTable(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	state, ok := e.tables[tableKey(schema, name)]
	if !ok {
		notFound(w, "table %q not found in schema %q", name, schema)
		return
	}

	var body struct {
		Table *tableDef `json:"table"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	delete(e.tables, tableKey(schema, name))
	if body.Table != nil {
		if body.Table.Name != "" {
			state.Table.Name = body.Table.Name
		}
		if body.Table.Schema != "" {
			state.Table.Schema = body.Table.Schema
		}
		if body.Table.Columns != nil {
			state.Table.Columns = body.Table.Columns
		}
		if body.Table.Constraints != nil {
			state.Table.Constraints = body.Table.Constraints
		}
	}
	e.tables[tableKey(state.Table.Schema, state.Table.Name)] = state
	writeJSON(w, http.StatusOK, map[string]any{"message": "table updated", "table_name": name})
}

func (e *Engine) deleteTable(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	if _, ok := e.tables[tableKey(schema, name)]; !ok {
		notFound(w, "table %q not found in schema %q", name, schema)
		return
	}
	delete(e.tables, tableKey(schema, name))
	writeJSON(w, http.StatusOK, map[string]any{"message": "table deleted", "table_name": name})
}

func (e *Engine) getRecords(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	state, ok := e.tables[tableKey(schema, name)]
	if !ok {
		notFound(w, "table %q not found in schema %q", name, schema)
		return
	}

	rows := state.Records
	total := len(rows)
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n < len(rows) {
			rows = rows[n:]
		} else if err == nil {
			rows = nil
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n < len(rows) {
			rows = rows[:n]
		}
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": rows, "total": total})
}

func (e *Engine) insertRecords(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	state, ok := e.tables[tableKey(schema, name)]
	if !ok {
		notFound(w, "table %q not found in schema %q", name, schema)
		return
	}

	var rows []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		unprocessable(w, "invalid records payload: %v", err)
		return
	}

	// Reject rows referencing unknown columns, like the integrity checks in
	// the real engine.
	if len(state.Table.Columns) > 0 {
		known := map[string]bool{}
		for _, c := range state.Table.Columns {
			known[c.Name] = true
		}
		for _, row := range rows {
			for col := range row {
				if !known[col] {
					unprocessable(w, "column %q does not exist in table %q", col, name)
					return
				}
			}
		}
	}

	state.Records = append(state.Records, rows...)
	writeJSON(w, http.StatusOK, map[string]any{"message": "records inserted", "table_name": name})
}

func (e *Engine) getRecordsCSV(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	state, ok := e.tables[tableKey(schema, name)]
	if !ok {
		notFound(w, "table %q not found in schema %q", name, schema)
		return
	}

	var sb strings.Builder
	var cols []string
	for _, c := range state.Table.Columns {
		cols = append(cols, c.Name)
	}
	sb.WriteString(strings.Join(cols, ","))
	sb.WriteString("\n")
	for _, row := range state.Records {
		var cells []string
		for _, col := range cols {
			cells = append(cells, fmt.Sprint(row[col]))
		}
		sb.WriteString(strings.Join(cells, ","))
		sb.WriteString("\n")
	}

	w.Header().Set("Content-Type", "text/csv")
	_, _ = w.Write([]byte(sb.String()))
}

func (e *Engine) uploadTable(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	if !e.schemas[schema] {
		notFound(w, "schema %q does not exist", schema)
		return
	}

	ifExists := r.URL.Query().Get("if_exists")
	_, exists := e.tables[tableKey(schema, name)]
	if exists && (ifExists == "" || ifExists == "fail") {
		conflict(w, "table %q already exists in schema %q", name, schema)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		unprocessable(w, "invalid multipart body: %v", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		unprocessable(w, "missing file part: %v", err)
		return
	}
	_ = file.Close()
	_ = header

	def := tableDef{Name: name, Schema: schema}
	if raw := r.FormValue("table"); raw != "" {
		var body tableDef
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			unprocessable(w, "invalid table body: %v", err)
			return
		}
		def.Columns = body.Columns
		def.Constraints = body.Constraints
	}

	if ifExists != "append" || !exists {
		e.tables[tableKey(schema, name)] = &tableState{Table: def}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "table uploaded", "table_name": name})
}
