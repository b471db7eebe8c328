package enginetest

import (
	"encoding/json"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// --- table templates ---

// versionLess orders "x.y" versions by integer components.
func versionLess(a, b string) bool {
	parse := func(v string) (int, int) {
		parts := strings.SplitN(v, ".", 2)
		if len(parts) != 2 {
			return 0, 0
		}
		major, _ := strconv.Atoi(parts[0])
		minor, _ := strconv.Atoi(parts[1])
		return major, minor
	}
	aMajor, aMinor := parse(a)
	bMajor, bMinor := parse(b)
	if aMajor != bMajor {
		return aMajor < bMajor
	}
	return aMinor < bMinor
}

func (e *Engine) listTableTemplates(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := r.URL.Query()
	search := q.Get("search")
	latest := q.Get("latest") == "true"

	var templates []tableTemplate
	for _, versions := range e.tableTemplates {
		entries := versions
		if latest && len(entries) > 0 {
			best := entries[0]
			for _, entry := range entries[1:] {
				if versionLess(best.Version, entry.Version) {
					best = entry
				}
			}
			entries = []tableTemplate{best}
		}
		for _, entry := range entries {
			if search == "" || strings.Contains(entry.Name, search) {
				templates = append(templates, entry)
			}
		}
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return versionLess(templates[j].Version, templates[i].Version)
	})
	if templates == nil {
		templates = []tableTemplate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"table_templates": templates})
}

func (e *Engine) getTableTemplate(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	entries, ok := e.tableTemplates[name]
	if !ok || len(entries) == 0 {
		notFound(w, "table template %q not found", name)
		return
	}

	// Versions are reported newest first.
	sorted := append([]tableTemplate(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return versionLess(sorted[j].Version, sorted[i].Version) })
	var versions []string
	for _, entry := range sorted {
		versions = append(versions, entry.Version)
	}

	selected := sorted
	switch version := r.URL.Query().Get("version"); version {
	case "":
	case "latest":
		selected = sorted[:1]
	default:
		selected = nil
		for _, entry := range sorted {
			if entry.Version == version {
				selected = []tableTemplate{entry}
				break
			}
		}
		if selected == nil {
			notFound(w, "table template %q version %q not found", name, version)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"table_templates": selected, "versions": versions})
}

func (e *Engine) createTableTemplate(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")

	var body struct {
		TableTemplate json.RawMessage `json:"table_template"`
		Version       string          `json:"version"`
		Compatibility string          `json:"compatibility"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if body.Version == "" {
		body.Version = "1.0"
	}
	if body.Compatibility == "" {
		body.Compatibility = "ignore"
	}
	if body.TableTemplate == nil {
		body.TableTemplate = json.RawMessage(`{}`)
	}

	for _, entry := range e.tableTemplates[name] {
		if entry.Version == body.Version {
			conflict(w, "table template %q version %q already exists", name, body.Version)
			return
		}
	}

	tpl := tableTemplate{
		Name:          name,
		Version:       body.Version,
		TableTemplate: body.TableTemplate,
		Compatibility: body.Compatibility,
	}
	e.tableTemplates[name] = append(e.tableTemplates[name], tpl)
	writeJSON(w, http.StatusOK, map[string]any{"table_template": tpl})
}

func (e *Engine) deleteTableTemplate(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	entries, ok := e.tableTemplates[name]
	if !ok || len(entries) == 0 {
		notFound(w, "table template %q not found", name)
		return
	}

	version := r.URL.Query().Get("version")
	if version == "" {
		delete(e.tableTemplates, name)
	} else {
		var kept []tableTemplate
		for _, entry := range entries {
			if entry.Version != version {
				kept = append(kept, entry)
			}
		}
		if len(kept) == len(entries) {
			notFound(w, "table template %q version %q not found", name, version)
			return
		}
		if len(kept) == 0 {
			delete(e.tableTemplates, name)
		} else {
			e.tableTemplates[name] = kept
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "table template deleted", "table_template_name": name})
}

// --- views ---

func (e *Engine) listViews(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	schema := r.URL.Query().Get("schema")
	if schema != "" && !e.schemas[schema] {
		notFound(w, "schema %q does not exist", schema)
		return
	}

	var views []*viewState
	for _, v := range e.views {
		if schema == "" || v.Schema == schema {
			views = append(views, v)
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n < len(views) {
			views = views[:n]
		}
	}
	if views == nil {
		views = []*viewState{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"views": views})
}

func (e *Engine) getView(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	v, ok := e.views[tableKey(schema, name)]
	if !ok {
		notFound(w, "view %q not found in schema %q", name, schema)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": v})
}

func (e *Engine) deleteView(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	schema := schemaOrPublic(r)
	if _, ok := e.views[tableKey(schema, name)]; !ok {
		notFound(w, "view %q not found in schema %q", name, schema)
		return
	}
	delete(e.views, tableKey(schema, name))
	writeJSON(w, http.StatusOK, map[string]any{"message": "view deleted"})
}

// --- schemas ---

func (e *Engine) listSchemas(w http.ResponseWriter, _ *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var schemas []map[string]string
	var names []string
	for name := range e.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		schemas = append(schemas, map[string]string{"name": name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemas": schemas})
}

func (e *Engine) createSchema(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := chi.URLParam(r, "name")
	if e.schemas[name] {
		conflict(w, "schema %q already exists", name)
		return
	}
	e.schemas[name] = true
	writeJSON(w, http.StatusOK, map[string]any{"schema": name, "message": "schema created"})
}

// --- files ---

func (e *Engine) uploadFile(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

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

	q := r.URL.Query()
	dir := q.Get("dir")
	if dir == "" {
		dir = "drive/image"
	}
	stored := path.Join(dir, header.Filename)
	e.files[stored] = true

	data := map[string]any{"file_path": stored}
	if q.Get("db_commit") == "true" {
		tableName := q.Get("table_name")
		columnName := q.Get("column_name")
		state, ok := e.tables[tableKey("public", tableName)]
		if !ok {
			notFound(w, "table %q not found", tableName)
			return
		}
		known := false
		for _, c := range state.Table.Columns {
			if c.Name == columnName {
				known = true
				break
			}
		}
		if !known {
			notFound(w, "column %q not found in table %q", columnName, tableName)
			return
		}
		state.Records = append(state.Records, map[string]any{columnName: stored})
		data["table_name"] = tableName
		data["column_name"] = columnName
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (e *Engine) listFiles(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pattern := r.URL.Query().Get("path")
	var matched []string
	for stored := range e.files {
		if ok, _ := path.Match(pattern, stored); ok || strings.HasPrefix(stored, strings.TrimSuffix(pattern, "*")) {
			matched = append(matched, stored)
		}
	}
	sort.Strings(matched)
	if matched == nil {
		matched = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"matched_pathnames": matched}})
}

func (e *Engine) deleteFile(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := r.URL.Query().Get("path")
	if !e.files[target] {
		notFound(w, "file %q not found", target)
		return
	}
	delete(e.files, target)
	writeJSON(w, http.StatusOK, map[string]any{"message": "file deleted"})
}
