package thanosql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmind-team/thanosql-go/internal/enginetest"
)

// newTestClient wires a client against a fresh fake engine.
func newTestClient(t *testing.T) (*Client, *enginetest.Engine) {
	t.Helper()

	engine := enginetest.New("test-token")
	server := engine.Serve()
	t.Cleanup(server.Close)

	client, err := NewClient(WithEngineURL(server.URL), WithToken("test-token"))
	require.NoError(t, err)
	return client, engine
}

func TestNewClientMissingConfig(t *testing.T) {
	t.Setenv(EnvEngineURL, "")
	t.Setenv(EnvToken, "")

	_, err := NewClient()
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"engine_url", "api_token"}, cfg.Missing)
}

func TestNewClientEnvFallback(t *testing.T) {
	t.Setenv(EnvEngineURL, "https://engine.example.com/")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvAPIVersion, "")

	client, err := NewClient()
	require.NoError(t, err)
	assert.Equal(t, "https://engine.example.com/api/v1", client.BaseURL())
}

func TestNewClientOptionBeatsEnv(t *testing.T) {
	t.Setenv(EnvEngineURL, "https://env.example.com")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvAPIVersion, "v9")

	client, err := NewClient(WithEngineURL("https://opt.example.com"), WithAPIVersion("v2"))
	require.NoError(t, err)
	assert.Equal(t, "https://opt.example.com/api/v2", client.BaseURL())
}

func TestClientRejectsBadToken(t *testing.T) {
	engine := enginetest.New("good-token")
	server := engine.Serve()
	t.Cleanup(server.Close)

	client, err := NewClient(WithEngineURL(server.URL), WithToken("bad-token"))
	require.NoError(t, err)

	_, err = client.Schema.List(context.Background())
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 401, ae.StatusCode)
	assert.Equal(t, "invalid token", ae.Message)
}

func TestClientNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Table.Get(context.Background(), "missing", "")
	assert.True(t, IsNotFound(err))

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Message, "missing")
}

func TestClientDecodeErrorOnBrokenEnvelope(t *testing.T) {
	client, err := NewClient(
		WithEngineURL("http://unused.example.com"),
		WithToken("t"),
		WithRequester(staticRequester{body: []byte(`{"unexpected": []}`)}),
	)
	require.NoError(t, err)

	_, err = client.View.List(context.Background(), ViewListInput{})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "views", de.Path)
	assert.ErrorIs(t, err, errMissingField)
}

func TestClientDecodeErrorOnMissingRequiredField(t *testing.T) {
	client, err := NewClient(
		WithEngineURL("http://unused.example.com"),
		WithToken("t"),
		WithRequester(staticRequester{body: []byte(`{"tables": [{"schema": "public"}]}`)}),
	)
	require.NoError(t, err)

	_, err = client.Table.List(context.Background(), TableListInput{})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "tables[0].name", de.Path)
}

// staticRequester replies with a fixed 200 body regardless of the request.
type staticRequester struct {
	body []byte
}

func (s staticRequester) Do(context.Context, *Request) (*Response, error) {
	return &Response{StatusCode: 200, Body: s.body}, nil
}
