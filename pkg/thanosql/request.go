package thanosql

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// fieldSet builds a JSON request body from a sparse parameter set. Fields
// left unset by the caller are absent from the payload entirely; the engine
// distinguishes "not provided" from "provided as empty".
type fieldSet map[string]any

func (f fieldSet) setString(key, v string) {
	if v != "" {
		f[key] = v
	}
}

func (f fieldSet) setInt(key string, v int) {
	if v != 0 {
		f[key] = v
	}
}

func (f fieldSet) setAny(key string, v any) {
	if v != nil {
		f[key] = v
	}
}

// orNil returns the map itself, or nil when no field was set, so that an
// all-defaults call produces a request without a body.
func (f fieldSet) orNil() any {
	if len(f) == 0 {
		return nil
	}
	return f
}

// queryParams builds URL query parameters with the same omission rule as
// fieldSet.
type queryParams struct {
	url.Values
}

func newQueryParams() queryParams {
	return queryParams{Values: url.Values{}}
}

func (p queryParams) setString(key, v string) {
	if v != "" {
		p.Set(key, v)
	}
}

func (p queryParams) setIntPtr(key string, v *int) {
	if v != nil {
		p.Set(key, strconv.Itoa(*v))
	}
}

func (p queryParams) setBoolPtr(key string, v *bool) {
	if v != nil {
		p.Set(key, strconv.FormatBool(*v))
	}
}

// marshalField JSON-encodes a value destined for a multipart form field.
func marshalField(name string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return string(b), nil
}

// Int returns a pointer to v, for optional integer parameters.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for optional boolean parameters.
func Bool(v bool) *bool { return &v }
