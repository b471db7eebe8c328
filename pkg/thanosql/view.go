package thanosql

import (
	"context"
	"net/http"
	"net/url"
)

// View is a saved view resource. Views are created through queries (CREATE
// VIEW); the API only lists, fetches, and deletes them.
type View struct {
	Name       string   `json:"name"`
	Schema     string   `json:"schema,omitempty"`
	Columns    []Column `json:"columns,omitempty"`
	Definition string   `json:"definition,omitempty"`
}

// ViewService lists and manages views.
type ViewService struct {
	client *Client
}

// ViewListInput filters a view listing.
type ViewListInput struct {
	Schema  string
	Verbose *bool
	Offset  *int
	Limit   *int
}

// List returns views in engine order.
func (s *ViewService) List(ctx context.Context, input ViewListInput) ([]View, error) {
	qp := newQueryParams()
	qp.setString("schema", input.Schema)
	qp.setBoolPtr("verbose", input.Verbose)
	qp.setIntPtr("offset", input.Offset)
	qp.setIntPtr("limit", input.Limit)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/view/", Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var views []View
	if err := decodeEnvelope(resp.Body, "views", &views); err != nil {
		return nil, err
	}
	for i, view := range views {
		if err := requireField(indexedPath("views", i, "name"), view.Name); err != nil {
			return nil, err
		}
	}
	return views, nil
}

// Get fetches one view by name.
func (s *ViewService) Get(ctx context.Context, name, schema string) (*View, error) {
	qp := newQueryParams()
	qp.setString("schema", schema)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/view/" + url.PathEscape(name), Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var view View
	if err := decodeEnvelope(resp.Body, "view", &view); err != nil {
		return nil, err
	}
	if err := requireField("view.name", view.Name); err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete drops a view.
func (s *ViewService) Delete(ctx context.Context, name, schema string) error {
	qp := newQueryParams()
	qp.setString("schema", schema)

	_, err := s.client.do(ctx, &Request{Method: http.MethodDelete, Path: "/view/" + url.PathEscape(name), Query: qp.Values})
	return err
}
