package thanosql

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Query dialects accepted by the engine.
const (
	QueryTypeThanoSQL = "thanosql"
	QueryTypePSQL     = "psql"
)

// Listing orders accepted by template endpoints.
const (
	OrderByRecent   = "recent"
	OrderByNameAsc  = "name_asc"
	OrderByNameDesc = "name_desc"
)

// Collision policies for table uploads.
const (
	IfExistsFail    = "fail"
	IfExistsAppend  = "append"
	IfExistsReplace = "replace"
)

// QueryLog is the engine's account of one executed query. A query that
// failed inside the engine is still a QueryLog: ErrorResult carries the
// failure and no APIError is raised, since the HTTP call itself succeeded.
type QueryLog struct {
	QueryID              string     `json:"query_id,omitempty"`
	StatementType        string     `json:"statement_type,omitempty"`
	StartTime            *time.Time `json:"start_time,omitempty"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	Query                string     `json:"query"`
	Referer              string     `json:"referer,omitempty"`
	State                string     `json:"state,omitempty"`
	DestinationTableName string     `json:"destination_table_name,omitempty"`
	DestinationSchema    string     `json:"destination_schema,omitempty"`
	ErrorResult          string     `json:"error_result,omitempty"`
	CreatedAt            *time.Time `json:"created_at,omitempty"`
	Records              *Records   `json:"records,omitempty"`
}

// Failed reports whether the query itself failed inside the engine.
func (l *QueryLog) Failed() bool { return l.ErrorResult != "" }

// QueryService executes queries. Logs and stored templates live on the
// nested services.
type QueryService struct {
	client   *Client
	Log      *QueryLogService
	Template *QueryTemplateService
}

// QueryExecuteInput describes one query execution. Exactly one of Query,
// TemplateID, or TemplateName must be set; Parameters fill a template's
// substitution markers.
type QueryExecuteInput struct {
	QueryType    string // thanosql (default) or psql
	Query        string
	TemplateID   int
	TemplateName string
	Parameters   map[string]any
	Schema       string
	TableName    string
	Overwrite    *bool
	MaxResults   *int
}

// Execute runs a query and returns its log entry. Check QueryLog.ErrorResult
// for engine-side query failures; they are not returned as errors.
func (s *QueryService) Execute(ctx context.Context, input QueryExecuteInput) (*QueryLog, error) {
	if input.QueryType == "" {
		input.QueryType = QueryTypeThanoSQL
	}
	if err := validateQueryExecute(&input); err != nil {
		return nil, err
	}

	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	qp.setString("table_name", input.TableName)
	qp.setBoolPtr("overwrite", input.Overwrite)
	qp.setIntPtr("max_results", input.MaxResults)

	body := fieldSet{}
	body.setString("query_type", input.QueryType)
	body.setString("query_string", input.Query)
	body.setInt("template_id", input.TemplateID)
	body.setString("template_name", input.TemplateName)
	if len(input.Parameters) > 0 {
		body["parameters"] = input.Parameters
	}

	resp, err := s.client.do(ctx, &Request{Method: http.MethodPost, Path: "/query/", Query: qp.Values, Body: body.orNil()})
	if err != nil {
		return nil, err
	}

	var log QueryLog
	if err := decodeAt(resp.Body, "$", &log); err != nil {
		return nil, err
	}
	if err := requireField("query_id", log.QueryID); err != nil {
		return nil, err
	}
	return &log, nil
}

// QueryLogService lists past query executions.
type QueryLogService struct {
	client *Client
}

// QueryLogListInput pages through the query history.
type QueryLogListInput struct {
	Search string
	Offset *int
	Limit  *int
}

// QueryLogPage is one page of query history. Total counts every matching
// log, not just the page.
type QueryLogPage struct {
	QueryLogs []QueryLog `json:"query_logs"`
	Total     int        `json:"total"`
}

// List returns the query history, most recent first as ordered by the
// engine.
func (s *QueryLogService) List(ctx context.Context, input QueryLogListInput) (*QueryLogPage, error) {
	qp := newQueryParams()
	qp.setString("search", input.Search)
	qp.setIntPtr("offset", input.Offset)
	qp.setIntPtr("limit", input.Limit)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/query/log", Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var page QueryLogPage
	if err := decodeAt(resp.Body, "$", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// QueryTemplate is a stored, reusable query string. Parameters is derived by
// the engine from the template's substitution markers; the client treats it
// as read-only output and never computes it locally.
type QueryTemplate struct {
	ID         int        `json:"id,omitempty"`
	Name       string     `json:"name"`
	Query      string     `json:"query"`
	Parameters []string   `json:"parameters,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// QueryTemplateService manages stored query templates.
type QueryTemplateService struct {
	client *Client
}

// QueryTemplateListInput filters a template listing.
type QueryTemplateListInput struct {
	Search  string
	Offset  *int
	Limit   *int
	OrderBy string // recent, name_asc, or name_desc
}

// List returns stored query templates in engine order.
func (s *QueryTemplateService) List(ctx context.Context, input QueryTemplateListInput) ([]QueryTemplate, error) {
	if err := validateOrderBy(input.OrderBy); err != nil {
		return nil, err
	}

	qp := newQueryParams()
	qp.setString("search", input.Search)
	qp.setIntPtr("offset", input.Offset)
	qp.setIntPtr("limit", input.Limit)
	qp.setString("order_by", input.OrderBy)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/query/template", Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var templates []QueryTemplate
	if err := decodeEnvelope(resp.Body, "query_templates", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// QueryTemplateCreateInput describes a template creation. With DryRun the
// engine validates and echoes the template without storing it.
type QueryTemplateCreateInput struct {
	Name   string
	Query  string
	DryRun *bool
}

// Create stores (or with DryRun, only validates) a query template. The
// engine infers Parameters from the query string.
func (s *QueryTemplateService) Create(ctx context.Context, input QueryTemplateCreateInput) (*QueryTemplate, error) {
	qp := newQueryParams()
	qp.setBoolPtr("dry_run", input.DryRun)

	body := fieldSet{}
	body.setString("name", input.Name)
	body.setString("query", input.Query)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodPost, Path: "/query/template", Query: qp.Values, Body: body.orNil()})
	if err != nil {
		return nil, err
	}

	var tpl QueryTemplate
	if err := decodeEnvelope(resp.Body, "query_template", &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Get fetches one template by name.
func (s *QueryTemplateService) Get(ctx context.Context, name string) (*QueryTemplate, error) {
	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/query/template/" + url.PathEscape(name)})
	if err != nil {
		return nil, err
	}

	var tpl QueryTemplate
	if err := decodeEnvelope(resp.Body, "query_template", &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// QueryTemplateUpdateInput renames a template and/or replaces its query.
type QueryTemplateUpdateInput struct {
	NewName string
	Query   string
}

// Update changes a stored template addressed by its current name.
func (s *QueryTemplateService) Update(ctx context.Context, currentName string, input QueryTemplateUpdateInput) (*QueryTemplate, error) {
	body := fieldSet{}
	body.setString("name", input.NewName)
	body.setString("query", input.Query)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodPut, Path: "/query/template/" + url.PathEscape(currentName), Body: body.orNil()})
	if err != nil {
		return nil, err
	}

	var tpl QueryTemplate
	if err := decodeEnvelope(resp.Body, "query_template", &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Delete removes a stored template.
func (s *QueryTemplateService) Delete(ctx context.Context, name string) error {
	_, err := s.client.do(ctx, &Request{Method: http.MethodDelete, Path: "/query/template/" + url.PathEscape(name)})
	return err
}
