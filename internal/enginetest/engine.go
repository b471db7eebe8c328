// Package enginetest provides an in-process fake of the ThanoSQL workspace
// engine for tests. It implements the JSON contract of the endpoints the
// SDK talks to, backed by in-memory state, and is served over httptest.
package enginetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Engine is the fake engine. State is guarded by a single mutex; the fake
// favors simplicity over concurrency.
type Engine struct {
	mu sync.Mutex

	token string

	schemas        map[string]bool
	tables         map[string]*tableState // keyed "schema/name"
	views          map[string]*viewState
	queryTemplates map[string]*queryTemplate
	tableTemplates map[string][]tableTemplate
	queryLogs      []queryLog
	files          map[string]bool // drive paths

	nextTemplateID int
}

type tableState struct {
	Table   tableDef
	Records []map[string]any
}

type tableDef struct {
	Name        string          `json:"name"`
	Schema      string          `json:"schema"`
	Columns     []column        `json:"columns,omitempty"`
	Constraints json.RawMessage `json:"constraints,omitempty"`
}

type column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type viewState struct {
	Name       string   `json:"name"`
	Schema     string   `json:"schema"`
	Columns    []column `json:"columns,omitempty"`
	Definition string   `json:"definition,omitempty"`
}

type queryTemplate struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Query      string    `json:"query"`
	Parameters []string  `json:"parameters"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type tableTemplate struct {
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	TableTemplate json.RawMessage `json:"table_template"`
	Compatibility string          `json:"compatibility"`
}

type queryLog struct {
	QueryID              string           `json:"query_id"`
	Query                string           `json:"query"`
	Referer              string           `json:"referer"`
	State                string           `json:"state"`
	DestinationTableName string           `json:"destination_table_name,omitempty"`
	DestinationSchema    string           `json:"destination_schema,omitempty"`
	ErrorResult          string           `json:"error_result,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	Records              *recordsEnvelope `json:"records,omitempty"`
}

type recordsEnvelope struct {
	Records []map[string]any `json:"records"`
	Total   int              `json:"total"`
}

// New returns a fake engine that accepts the given bearer token.
func New(token string) *Engine {
	return &Engine{
		token:          token,
		schemas:        map[string]bool{"public": true, "qm": true},
		tables:         map[string]*tableState{},
		views:          map[string]*viewState{},
		queryTemplates: map[string]*queryTemplate{},
		tableTemplates: map[string][]tableTemplate{},
		files:          map[string]bool{},
		nextTemplateID: 1,
	}
}

// Serve starts an httptest server for the engine. The caller owns Close.
func (e *Engine) Serve() *httptest.Server {
	return httptest.NewServer(e.Router())
}

// Router mounts the engine API under /api/v1.
func (e *Engine) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(e.auth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query/", e.executeQuery)
		r.Get("/query/log", e.listQueryLogs)
		r.Get("/query/template", e.listQueryTemplates)
		r.Post("/query/template", e.createQueryTemplate)
		r.Get("/query/template/{name}", e.getQueryTemplate)
		r.Put("/query/template/{name}", e.updateQueryTemplate)
		r.Delete("/query/template/{name}", e.deleteQueryTemplate)

		r.Get("/table/", e.listTables)
		r.Get("/table/{name}", e.getTable)
		r.Post("/table/{name}", e.createTable)
		r.Put("/table/{name}", e.updateTable)
		r.Delete("/table/{name}", e.deleteTable)
		r.Get("/table/{name}/records", e.getRecords)
		r.Post("/table/{name}/records", e.insertRecords)
		r.Get("/table/{name}/records/csv", e.getRecordsCSV)
		r.Post("/table/{name}/upload/csv", e.uploadTable)
		r.Post("/table/{name}/upload/excel", e.uploadTable)

		r.Get("/table_template/", e.listTableTemplates)
		r.Get("/table_template/{name}", e.getTableTemplate)
		r.Post("/table_template/{name}", e.createTableTemplate)
		r.Delete("/table_template/{name}", e.deleteTableTemplate)

		r.Get("/view/", e.listViews)
		r.Get("/view/{name}", e.getView)
		r.Delete("/view/{name}", e.deleteView)

		r.Get("/schema/", e.listSchemas)
		r.Post("/schema/{name}", e.createSchema)

		r.Post("/file/", e.uploadFile)
		r.Get("/file/", e.listFiles)
		r.Delete("/file/", e.deleteFile)
	})

	return r
}

func (e *Engine) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if e.token != "" && r.Header.Get("Authorization") != "Bearer "+e.token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusNotFound, map[string]any{"message": fmt.Sprintf(format, args...)})
}

func conflict(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusConflict, map[string]any{"message": fmt.Sprintf(format, args...)})
}

func unprocessable(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": fmt.Sprintf(format, args...)})
}

func tableKey(schema, name string) string { return schema + "/" + name }

func schemaOrPublic(r *http.Request) string {
	if s := r.URL.Query().Get("schema"); s != "" {
		return s
	}
	return "public"
}

// templateMarker matches {{ name }} substitution markers, the same scan the
// real engine performs to infer template parameters.
var templateMarker = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

func scanParameters(query string) []string {
	var params []string
	seen := map[string]bool{}
	for _, m := range templateMarker.FindAllStringSubmatch(query, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			params = append(params, m[1])
		}
	}
	if params == nil {
		params = []string{}
	}
	return params
}

// SeedTable installs a table with rows directly into engine state.
func (e *Engine) SeedTable(schema, name string, cols [][2]string, rows []map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def := tableDef{Name: name, Schema: schema}
	for _, c := range cols {
		def.Columns = append(def.Columns, column{Name: c[0], Type: c[1]})
	}
	e.tables[tableKey(schema, name)] = &tableState{Table: def, Records: rows}
}

// SeedView installs a view directly into engine state.
func (e *Engine) SeedView(schema, name, definition string, cols [][2]string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := &viewState{Name: name, Schema: schema, Definition: definition}
	for _, c := range cols {
		v.Columns = append(v.Columns, column{Name: c[0], Type: c[1]})
	}
	e.views[tableKey(schema, name)] = v
}

// --- query ---

func (e *Engine) executeQuery(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var body struct {
		QueryType    string         `json:"query_type"`
		QueryString  string         `json:"query_string"`
		TemplateID   int            `json:"template_id"`
		TemplateName string         `json:"template_name"`
		Parameters   map[string]any `json:"parameters"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	query := body.QueryString
	if body.TemplateName != "" || body.TemplateID != 0 {
		tpl := e.findQueryTemplate(body.TemplateID, body.TemplateName)
		if tpl == nil {
			notFound(w, "query template not found")
			return
		}
		query = tpl.Query
	}
	for name, value := range body.Parameters {
		query = templateMarker.ReplaceAllStringFunc(query, func(m string) string {
			if templateMarker.FindStringSubmatch(m)[1] == name {
				return fmt.Sprint(value)
			}
			return m
		})
	}

	q := r.URL.Query()
	schema := q.Get("schema")
	tableName := q.Get("table_name")
	overwrite := q.Get("overwrite") == "true"

	if schema != "" && !e.schemas[schema] {
		notFound(w, "schema %q does not exist", schema)
		return
	}
	if schema == "" {
		schema = "public"
	}

	log := queryLog{
		QueryID:   uuid.NewString(),
		Query:     query,
		Referer:   "api",
		State:     "success",
		CreatedAt: time.Now().UTC(),
	}

	// A destination table routes results into storage instead of the reply.
	if tableName != "" {
		if _, exists := e.tables[tableKey(schema, tableName)]; exists && !overwrite {
			conflict(w, "table %q already exists in schema %q", tableName, schema)
			return
		}
		e.tables[tableKey(schema, tableName)] = &tableState{
			Table: tableDef{Name: tableName, Schema: schema},
		}
		log.DestinationSchema = schema
		log.DestinationTableName = tableName
	}

	// Queries containing "INVALID" simulate an engine-side failure: still a
	// 200, with error_result set.
	if strings.Contains(query, "INVALID") {
		log.State = "failed"
		log.ErrorResult = "syntax error in query"
	} else if tableName == "" && strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		rows := e.selectRows(query)
		maxResults := len(rows)
		if v := q.Get("max_results"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n < maxResults {
				maxResults = n
			}
		}
		log.Records = &recordsEnvelope{Records: rows[:maxResults], Total: len(rows)}
	}

	e.queryLogs = append(e.queryLogs, log)
	writeJSON(w, http.StatusOK, log)
}

// selectRows returns rows of the first table whose name appears in the
// query. A crude stand-in for execution, enough for client-side tests.
func (e *Engine) selectRows(query string) []map[string]any {
	for _, state := range e.tables {
		if strings.Contains(query, state.Table.Name) {
			return state.Records
		}
	}
	return []map[string]any{}
}

func (e *Engine) listQueryLogs(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	search := r.URL.Query().Get("search")
	var logs []queryLog
	for _, l := range e.queryLogs {
		if search == "" || strings.Contains(l.Query, search) {
			logs = append(logs, l)
		}
	}
	if logs == nil {
		logs = []queryLog{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query_logs": logs, "total": len(logs)})
}

func (e *Engine) findQueryTemplate(id int, name string) *queryTemplate {
	if name != "" {
		return e.queryTemplates[name]
	}
	for _, tpl := range e.queryTemplates {
		if tpl.ID == id {
			return tpl
		}
	}
	return nil
}

func (e *Engine) listQueryTemplates(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var templates []*queryTemplate
	for _, tpl := range e.queryTemplates {
		templates = append(templates, tpl)
	}
	switch r.URL.Query().Get("order_by") {
	case "name_desc":
		sort.Slice(templates, func(i, j int) bool { return templates[i].Name > templates[j].Name })
	case "recent":
		sort.Slice(templates, func(i, j int) bool { return templates[i].CreatedAt.After(templates[j].CreatedAt) })
	default:
		sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	}
	if templates == nil {
		templates = []*queryTemplate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query_templates": templates})
}

func (e *Engine) createQueryTemplate(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var body struct {
		Name  string `json:"name"`
		Query string `json:"query"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if body.Name == "" {
		body.Name = fmt.Sprintf("query_template_%d", e.nextTemplateID)
	}
	tpl := &queryTemplate{
		ID:         e.nextTemplateID,
		Name:       body.Name,
		Query:      body.Query,
		Parameters: scanParameters(body.Query),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if r.URL.Query().Get("dry_run") == "true" {
		writeJSON(w, http.StatusOK, map[string]any{"query_template": tpl})
		return
	}
	if _, exists := e.queryTemplates[body.Name]; exists {
		conflict(w, "query template %q already exists", body.Name)
		return
	}
	e.nextTemplateID++
	e.queryTemplates[body.Name] = tpl
	writeJSON(w, http.StatusOK, map[string]any{"query_template": tpl})
}

func (e *Engine) getQueryTemplate(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	tpl, ok := e.queryTemplates[name]
	if !ok {
		notFound(w, "query template %q not found", name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query_template": tpl})
}

func (e *Engine) updateQueryTemplate(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	tpl, ok := e.queryTemplates[name]
	if !ok {
		notFound(w, "query template %q not found", name)
		return
	}

	var body struct {
		Name  string `json:"name"`
		Query string `json:"query"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if body.Name != "" && body.Name != name {
		if _, exists := e.queryTemplates[body.Name]; exists {
			conflict(w, "query template %q already exists", body.Name)
			return
		}
		delete(e.queryTemplates, name)
		tpl.Name = body.Name
		e.queryTemplates[body.Name] = tpl
	}
	if body.Query != "" {
		tpl.Query = body.Query
		tpl.Parameters = scanParameters(body.Query)
	}
	tpl.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, map[string]any{"query_template": tpl})
}

func (e *Engine) deleteQueryTemplate(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	if _, ok := e.queryTemplates[name]; !ok {
		notFound(w, "query template %q not found", name)
		return
	}
	delete(e.queryTemplates, name)
	writeJSON(w, http.StatusOK, map[string]any{"message": "query template deleted"})
}
