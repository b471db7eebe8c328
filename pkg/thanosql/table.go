package thanosql

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TableObject is the schema payload shared by table creation and table
// template creation: columns plus an optional constraint set. When
// Constraints is nil the key is omitted from the request entirely rather
// than sent as null or an empty object.
type TableObject struct {
	Columns     []Column     `json:"columns,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// Validate checks the assembled aggregate before it is put on the wire.
// Constraint and column lists may be built independently, so cross-checks
// happen here rather than at individual constraint construction.
func (t *TableObject) Validate() error {
	if t == nil || t.Constraints == nil {
		return nil
	}

	known := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		known[col.Name] = true
	}

	names := make(map[string]bool)
	checkName := func(field, name string) error {
		if name == "" {
			return nil
		}
		if names[name] {
			return &InvalidArgumentError{
				Fields: []string{field},
				Reason: fmt.Sprintf("duplicate constraint name %q", name),
			}
		}
		names[name] = true
		return nil
	}
	checkColumns := func(field string, columns []string) error {
		for _, col := range columns {
			if !known[col] {
				return &InvalidArgumentError{
					Fields: []string{field},
					Reason: fmt.Sprintf("constraint references unknown column %q", col),
				}
			}
		}
		return nil
	}

	for i, u := range t.Constraints.Unique {
		field := fmt.Sprintf("constraints.unique[%d]", i)
		if err := checkName(field, u.Name); err != nil {
			return err
		}
		if err := checkColumns(field, u.Columns); err != nil {
			return err
		}
	}

	if pk := t.Constraints.PrimaryKey; pk != nil {
		if err := checkName("constraints.primary_key", pk.Name); err != nil {
			return err
		}
		if err := checkColumns("constraints.primary_key", pk.Columns); err != nil {
			return err
		}
	}

	for i, fk := range t.Constraints.ForeignKeys {
		field := fmt.Sprintf("constraints.foreign_keys[%d]", i)
		if err := checkName(field, fk.Name); err != nil {
			return err
		}
		if fk.ReferenceTable == "" || fk.ReferenceColumn == "" {
			return &InvalidArgumentError{
				Fields: []string{field},
				Reason: "foreign key requires reference_table and reference_column",
			}
		}
	}

	return nil
}

// Table is a table resource as reported by the engine. Its identity key is
// (Schema, Name); uniqueness is enforced server-side and a conflict comes
// back as an APIError.
type Table struct {
	Name        string       `json:"name"`
	Schema      string       `json:"schema"`
	Columns     []Column     `json:"columns,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// TableUpdate is the payload for updating an existing table: any subset of
// name, schema, columns, and constraints may be set.
type TableUpdate struct {
	Name        string       `json:"name,omitempty"`
	Schema      string       `json:"schema,omitempty"`
	Columns     []Column     `json:"columns,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// TableResult is the engine's acknowledgement for table mutations.
type TableResult struct {
	Message   string `json:"message"`
	TableName string `json:"table_name"`
}

// TableService provides table operations. Versioned table templates live on
// the nested Template service.
type TableService struct {
	client   *Client
	Template *TableTemplateService
}

// TableListInput filters a table listing.
type TableListInput struct {
	Schema  string
	Verbose *bool
	Offset  *int
	Limit   *int
}

// List returns tables in the workspace, in the order the engine reports
// them.
func (s *TableService) List(ctx context.Context, input TableListInput) ([]Table, error) {
	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	qp.setBoolPtr("verbose", input.Verbose)
	qp.setIntPtr("offset", input.Offset)
	qp.setIntPtr("limit", input.Limit)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/table/", Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var tables []Table
	if err := decodeEnvelope(resp.Body, "tables", &tables); err != nil {
		return nil, err
	}
	for i, table := range tables {
		if err := requireField(indexedPath("tables", i, "name"), table.Name); err != nil {
			return nil, err
		}
		if err := requireField(indexedPath("tables", i, "schema"), table.Schema); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// Get fetches a single table by name. Schema is optional and defaults to
// "public" on the engine side.
func (s *TableService) Get(ctx context.Context, name, schema string) (*Table, error) {
	qp := newQueryParams()
	qp.setString("schema", schema)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/table/" + url.PathEscape(name), Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var table Table
	if err := decodeEnvelope(resp.Body, "table", &table); err != nil {
		return nil, err
	}
	if err := requireField("table.name", table.Name); err != nil {
		return nil, err
	}
	if err := requireField("table.schema", table.Schema); err != nil {
		return nil, err
	}
	return &table, nil
}

// TableCreateInput carries the optional parts of a table creation.
type TableCreateInput struct {
	Schema string
	Table  *TableObject
}

// Create creates a table. The (schema, name) pair must be unused; the engine
// reports a conflict otherwise.
func (s *TableService) Create(ctx context.Context, name string, input TableCreateInput) (*TableResult, error) {
	if err := input.Table.Validate(); err != nil {
		return nil, err
	}

	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	body := fieldSet{}
	body.setAny("table", input.Table)

	resp, err := s.client.do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/table/" + url.PathEscape(name),
		Query:  qp.Values,
		Body:   body.orNil(),
	})
	if err != nil {
		return nil, err
	}

	var result TableResult
	if err := decodeAt(resp.Body, "$", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TableUpdateInput carries the optional parts of a table update.
type TableUpdateInput struct {
	Schema string
	Table  *TableUpdate
}

// Update alters an existing table in place: rename, move between schemas, or
// replace columns and constraints.
func (s *TableService) Update(ctx context.Context, name string, input TableUpdateInput) (*TableResult, error) {
	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	body := fieldSet{}
	body.setAny("table", input.Table)

	resp, err := s.client.do(ctx, &Request{
		Method: http.MethodPut,
		Path:   "/table/" + url.PathEscape(name),
		Query:  qp.Values,
		Body:   body.orNil(),
	})
	if err != nil {
		return nil, err
	}

	var result TableResult
	if err := decodeAt(resp.Body, "$", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete drops a table.
func (s *TableService) Delete(ctx context.Context, name, schema string) error {
	qp := newQueryParams()
	qp.setString("schema", schema)

	_, err := s.client.do(ctx, &Request{Method: http.MethodDelete, Path: "/table/" + url.PathEscape(name), Query: qp.Values})
	return err
}

// excelExtensions are the upload formats routed to the excel endpoint.
var excelExtensions = map[string]bool{
	".xls": true, ".xlsx": true, ".xlsm": true, ".xlsb": true,
	".odf": true, ".ods": true, ".odt": true,
}

// TableUploadInput describes a CSV or Excel file upload into a table.
type TableUploadInput struct {
	File     string
	Schema   string
	Table    *TableObject
	IfExists string // fail (default), append, or replace
}

// Upload creates or fills a table from a local CSV or Excel file. The target
// endpoint is chosen from the file extension; anything else is rejected
// locally.
func (s *TableService) Upload(ctx context.Context, name string, input TableUploadInput) (*TableResult, error) {
	if err := validateIfExists(input.IfExists); err != nil {
		return nil, err
	}
	if err := input.Table.Validate(); err != nil {
		return nil, err
	}

	path := "/table/" + url.PathEscape(name) + "/upload/"
	ext := strings.ToLower(filepath.Ext(input.File))
	switch {
	case ext == ".csv":
		path += "csv"
	case excelExtensions[ext]:
		path += "excel"
	default:
		return nil, &InvalidArgumentError{
			Fields: []string{"file"},
			Reason: fmt.Sprintf("unsupported file extension %q, expected csv or excel", ext),
		}
	}

	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	qp.setString("if_exists", input.IfExists)

	upload := &Upload{Path: input.File}
	if input.Table != nil {
		encoded, err := marshalField("table", input.Table)
		if err != nil {
			return nil, err
		}
		upload.Fields = map[string]string{"table": encoded}
	}

	resp, err := s.client.do(ctx, &Request{Method: http.MethodPost, Path: path, Query: qp.Values, Upload: upload})
	if err != nil {
		return nil, err
	}

	var result TableResult
	if err := decodeAt(resp.Body, "$", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TableRecordsInput pages through a table's rows.
type TableRecordsInput struct {
	Schema         string
	Offset         *int
	Limit          *int
	TimezoneOffset *int
}

// GetRecords lists a table's rows as a Records container. Total always
// reflects the full row count regardless of Offset and Limit.
func (s *TableService) GetRecords(ctx context.Context, name string, input TableRecordsInput) (*Records, error) {
	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	qp.setIntPtr("offset", input.Offset)
	qp.setIntPtr("limit", input.Limit)
	qp.setIntPtr("timezone_offset", input.TimezoneOffset)

	resp, err := s.client.do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/table/" + url.PathEscape(name) + "/records",
		Query:  qp.Values,
	})
	if err != nil {
		return nil, err
	}

	var records Records
	if err := decodeAt(resp.Body, "records", &records); err != nil {
		return nil, err
	}
	return &records, nil
}

// GetRecordsAsCSV downloads a table's rows as CSV into outputPath. When
// outputPath is empty a name is generated next to the working directory.
// The written path is returned.
func (s *TableService) GetRecordsAsCSV(ctx context.Context, name string, outputPath string, input TableRecordsInput) (string, error) {
	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	qp.setIntPtr("offset", input.Offset)
	qp.setIntPtr("limit", input.Limit)
	qp.setIntPtr("timezone_offset", input.TimezoneOffset)

	resp, err := s.client.do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/table/" + url.PathEscape(name) + "/records/csv",
		Query:  qp.Values,
	})
	if err != nil {
		return "", err
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("%s_%s.csv", name, uuid.NewString()[:8])
	}
	if err := os.WriteFile(outputPath, resp.Body, 0o644); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return outputPath, nil
}

// InsertRecords appends rows to a table. The engine validates the rows
// against the table's columns.
func (s *TableService) InsertRecords(ctx context.Context, name, schema string, records []Row) error {
	qp := newQueryParams()
	qp.setString("schema", schema)

	_, err := s.client.do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/table/" + url.PathEscape(name) + "/records",
		Query:  qp.Values,
		Body:   records,
	})
	return err
}
