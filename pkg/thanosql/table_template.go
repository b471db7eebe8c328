package thanosql

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Compatibility modes for table template versions. The value is opaque to
// the client beyond passthrough; "ignore" is the engine default.
const CompatibilityIgnore = "ignore"

// TableTemplate is a versioned, reusable schema definition. Its identity key
// is (Name, Version); several versions may share a name. There is no update
// endpoint: publishing a change means creating the same name under a higher
// version.
type TableTemplate struct {
	Name          string      `json:"name"`
	Version       string      `json:"version"`
	TableTemplate TableObject `json:"table_template"`
	Compatibility string      `json:"compatibility,omitempty"`
}

// TableTemplateService manages versioned table templates.
type TableTemplateService struct {
	client *Client
}

// TableTemplateListInput filters a template listing.
type TableTemplateListInput struct {
	Search  string
	OrderBy string // recent, name_asc, or name_desc
	Latest  *bool
}

// List returns table templates, in the order the engine reports them.
func (s *TableTemplateService) List(ctx context.Context, input TableTemplateListInput) ([]TableTemplate, error) {
	if err := validateOrderBy(input.OrderBy); err != nil {
		return nil, err
	}

	qp := newQueryParams()
	qp.setString("search", input.Search)
	qp.setString("order_by", input.OrderBy)
	qp.setBoolPtr("latest", input.Latest)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/table_template/", Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var templates []TableTemplate
	if err := decodeEnvelope(resp.Body, "table_templates", &templates); err != nil {
		return nil, err
	}
	for i, tpl := range templates {
		if err := requireField(indexedPath("table_templates", i, "name"), tpl.Name); err != nil {
			return nil, err
		}
		if err := requireField(indexedPath("table_templates", i, "version"), tpl.Version); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// TableTemplateGetResult is the reply for a single template name: the
// matching versions plus the full version list for that name.
type TableTemplateGetResult struct {
	TableTemplates []TableTemplate `json:"table_templates"`
	Versions       []string        `json:"versions"`
}

// Get fetches the versions of one template name. Version narrows the result
// to one entry; "latest" selects the highest version; empty returns all.
func (s *TableTemplateService) Get(ctx context.Context, name, version string) (*TableTemplateGetResult, error) {
	if version != "" && version != "latest" {
		if _, _, err := parseVersion(version); err != nil {
			return nil, err
		}
	}

	qp := newQueryParams()
	qp.setString("version", version)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/table_template/" + url.PathEscape(name), Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var result TableTemplateGetResult
	if err := decodeAt(resp.Body, "$", &result); err != nil {
		return nil, err
	}
	for i, tpl := range result.TableTemplates {
		if err := requireField(indexedPath("table_templates", i, "name"), tpl.Name); err != nil {
			return nil, err
		}
		if err := requireField(indexedPath("table_templates", i, "version"), tpl.Version); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// TableTemplateCreateInput carries the optional parts of a template
// creation. Version defaults to "1.0" and Compatibility to "ignore" on the
// engine side.
type TableTemplateCreateInput struct {
	TableTemplate *TableObject
	Version       string
	Compatibility string
}

// Create stores a new (name, version) template entry.
func (s *TableTemplateService) Create(ctx context.Context, name string, input TableTemplateCreateInput) (*TableTemplate, error) {
	if input.Version != "" {
		if _, _, err := parseVersion(input.Version); err != nil {
			return nil, err
		}
	}
	if err := input.TableTemplate.Validate(); err != nil {
		return nil, err
	}

	body := fieldSet{}
	body.setAny("table_template", input.TableTemplate)
	body.setString("version", input.Version)
	body.setString("compatibility", input.Compatibility)

	resp, err := s.client.do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/table_template/" + url.PathEscape(name),
		Body:   body.orNil(),
	})
	if err != nil {
		return nil, err
	}

	var tpl TableTemplate
	if err := decodeEnvelope(resp.Body, "table_template", &tpl); err != nil {
		return nil, err
	}
	if err := requireField("table_template.name", tpl.Name); err != nil {
		return nil, err
	}
	if err := requireField("table_template.version", tpl.Version); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Delete removes one version of a template, or every version when version is
// empty.
func (s *TableTemplateService) Delete(ctx context.Context, name, version string) error {
	qp := newQueryParams()
	qp.setString("version", version)

	_, err := s.client.do(ctx, &Request{Method: http.MethodDelete, Path: "/table_template/" + url.PathEscape(name), Query: qp.Values})
	return err
}

// parseVersion splits an "x.y" template version into integer components.
// The major part ranges 1..9 and the minor part 0..9.
func parseVersion(v string) (major, minor int, err error) {
	invalid := &InvalidArgumentError{
		Fields: []string{"version"},
		Reason: fmt.Sprintf("version %q must have the form x.y with x in 1..9 and y in 0..9", v),
	}

	parts := strings.Split(v, ".")
	if len(parts) != 2 {
		return 0, 0, invalid
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil || major < 1 || major > 9 {
		return 0, 0, invalid
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil || minor < 0 || minor > 9 {
		return 0, 0, invalid
	}
	return major, minor, nil
}

// compareVersions orders two template versions by their integer components,
// never by string comparison, so "10.0" can never sort before "2.0" even if
// the version domain grows.
func compareVersions(a, b string) int {
	aMajor, aMinor, errA := parseVersion(a)
	bMajor, bMinor, errB := parseVersion(b)
	if errA != nil || errB != nil {
		// Unparseable versions sort first so valid ones win a Latest scan.
		switch {
		case errA == nil:
			return 1
		case errB == nil:
			return -1
		default:
			return 0
		}
	}
	if aMajor != bMajor {
		return aMajor - bMajor
	}
	return aMinor - bMinor
}

// LatestTemplate returns the template with the highest version among the
// given entries, or nil for an empty slice. Entries are expected to share a
// name; the caller filters by name first.
func LatestTemplate(templates []TableTemplate) *TableTemplate {
	var latest *TableTemplate
	for i := range templates {
		if latest == nil || compareVersions(templates[i].Version, latest.Version) > 0 {
			latest = &templates[i]
		}
	}
	return latest
}
