package thanosql

import (
	"context"
	"net/http"
	"net/url"
)

// Schema is a named namespace for tables and views.
type Schema struct {
	Name string `json:"name"`
}

// SchemaResult is the engine's acknowledgement for a schema creation.
type SchemaResult struct {
	Schema  string `json:"schema"`
	Message string `json:"message"`
}

// SchemaService lists and creates schemas. There is no delete endpoint;
// schemas are dropped through queries.
type SchemaService struct {
	client *Client
}

// List returns the schemas stored in the workspace.
func (s *SchemaService) List(ctx context.Context) ([]Schema, error) {
	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/schema/"})
	if err != nil {
		return nil, err
	}

	var schemas []Schema
	if err := decodeEnvelope(resp.Body, "schemas", &schemas); err != nil {
		return nil, err
	}
	return schemas, nil
}

// Create adds a new schema.
func (s *SchemaService) Create(ctx context.Context, name string) (*SchemaResult, error) {
	resp, err := s.client.do(ctx, &Request{Method: http.MethodPost, Path: "/schema/" + url.PathEscape(name)})
	if err != nil {
		return nil, err
	}

	var result SchemaResult
	if err := decodeAt(resp.Body, "$", &result); err != nil {
		return nil, err
	}
	return &result, nil
}
