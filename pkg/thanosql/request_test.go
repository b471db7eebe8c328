package thanosql

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSetOmitsUnset(t *testing.T) {
	body := fieldSet{}
	body.setString("name", "")
	body.setInt("template_id", 0)
	body.setAny("table", nil)

	// Nothing was set, so no body should be sent at all.
	assert.Nil(t, body.orNil())

	body.setString("name", "x")
	body.setInt("template_id", 3)
	require.NotNil(t, body.orNil())
	assert.Equal(t, fieldSet{"name": "x", "template_id": 3}, body)
}

func TestQueryParamsOmitUnset(t *testing.T) {
	qp := newQueryParams()
	qp.setString("schema", "")
	qp.setIntPtr("limit", nil)
	qp.setBoolPtr("overwrite", nil)
	assert.Empty(t, qp.Values)

	qp.setString("schema", "public")
	qp.setIntPtr("limit", Int(10))
	qp.setBoolPtr("overwrite", Bool(false))
	assert.Equal(t, "limit=10&overwrite=false&schema=public", qp.Encode())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t,
		"invalid argument (query, template_id): too many sources",
		(&InvalidArgumentError{Fields: []string{"query", "template_id"}, Reason: "too many sources"}).Error())

	assert.Equal(t,
		"missing configuration: engine_url, api_token",
		(&ConfigError{Missing: []string{"engine_url", "api_token"}}).Error())

	assert.Equal(t,
		"engine returned 404: table not found",
		(&APIError{StatusCode: 404, Message: "table not found"}).Error())

	// An empty engine message falls back to the status text.
	assert.Equal(t,
		"engine returned 500: Internal Server Error",
		(&APIError{StatusCode: 500}).Error())
}

func TestTransportWrapsEncodeFailure(t *testing.T) {
	tr := newHTTPTransport("http://localhost", "tok", nil)

	// A channel cannot be JSON-encoded, so the request fails before any
	// network activity.
	_, err := tr.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/query/",
		Body:   map[string]any{"bad": make(chan int)},
	})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "encode request body")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	assert.ErrorIs(t, &TransportError{Op: "GET /table/", Err: cause}, cause)
	assert.ErrorIs(t, &DecodeError{Path: "table", Err: errMissingField}, errMissingField)
}
