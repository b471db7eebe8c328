package thanosql

import (
	"encoding/json"
	"fmt"
)

// envelope pulls the named key out of a JSON object response. List and get
// endpoints wrap their resource under a key ("table", "views", ...); a
// missing key means the engine contract changed and is a DecodeError, not
// an APIError.
func envelope(body []byte, key string) (json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, &DecodeError{Path: "$", Err: err}
	}
	raw, ok := m[key]
	if !ok {
		return nil, &DecodeError{Path: key, Err: errMissingField}
	}
	return raw, nil
}

// decodeAt unmarshals raw into v, tagging failures with the field path.
func decodeAt(raw []byte, path string, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// decodeEnvelope combines envelope extraction and decoding under one path.
func decodeEnvelope(body []byte, key string, v any) error {
	raw, err := envelope(body, key)
	if err != nil {
		return err
	}
	return decodeAt(raw, key, v)
}

// requireField enforces a required response field after decoding.
func requireField(path, value string) error {
	if value == "" {
		return &DecodeError{Path: path, Err: errMissingField}
	}
	return nil
}

// indexedPath renders "key[i].field" paths for list decode failures.
func indexedPath(key string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", key, i, field)
}
