package thanosql

import (
	"fmt"
	"strings"
)

// validateQueryExecute enforces the cross-field rules for query execution
// before any request is built: exactly one query source, and a recognized
// dialect. Pure, no I/O.
func validateQueryExecute(input *QueryExecuteInput) error {
	switch input.QueryType {
	case QueryTypeThanoSQL, QueryTypePSQL:
	default:
		return &InvalidArgumentError{
			Fields: []string{"query_type"},
			Reason: fmt.Sprintf("unknown query type %q, expected %s or %s", input.QueryType, QueryTypeThanoSQL, QueryTypePSQL),
		}
	}

	var sources []string
	if input.Query != "" {
		sources = append(sources, "query")
	}
	if input.TemplateID != 0 {
		sources = append(sources, "template_id")
	}
	if input.TemplateName != "" {
		sources = append(sources, "template_name")
	}

	switch len(sources) {
	case 0:
		return &InvalidArgumentError{
			Fields: []string{"query", "template_id", "template_name"},
			Reason: "one of query, template_id, or template_name is required",
		}
	case 1:
		return nil
	default:
		return &InvalidArgumentError{
			Fields: sources,
			Reason: fmt.Sprintf("%s are mutually exclusive", strings.Join(sources, " and ")),
		}
	}
}

// validateOrderBy checks a listing order against the fixed engine set. Empty
// means engine default.
func validateOrderBy(v string) error {
	switch v {
	case "", OrderByRecent, OrderByNameAsc, OrderByNameDesc:
		return nil
	}
	return &InvalidArgumentError{
		Fields: []string{"order_by"},
		Reason: fmt.Sprintf("unknown order %q, expected %s, %s, or %s", v, OrderByRecent, OrderByNameAsc, OrderByNameDesc),
	}
}

// validateIfExists checks an upload collision policy. Empty means the engine
// default (fail).
func validateIfExists(v string) error {
	switch v {
	case "", IfExistsFail, IfExistsAppend, IfExistsReplace:
		return nil
	}
	return &InvalidArgumentError{
		Fields: []string{"if_exists"},
		Reason: fmt.Sprintf("unknown policy %q, expected %s, %s, or %s", v, IfExistsFail, IfExistsAppend, IfExistsReplace),
	}
}

// validateDrivePath checks that a workspace file path is rooted under the
// drive/ prefix, the only area the file API serves.
func validateDrivePath(path string) error {
	if !strings.HasPrefix(path, "drive/") {
		return &InvalidArgumentError{
			Fields: []string{"path"},
			Reason: fmt.Sprintf("path %q must start with drive/", path),
		}
	}
	return nil
}
