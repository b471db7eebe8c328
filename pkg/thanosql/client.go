package thanosql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// Environment variables consulted when the corresponding option is not
// given.
const (
	EnvToken      = "THANOSQL_API_TOKEN"
	EnvEngineURL  = "THANOSQL_ENGINE_URL"
	EnvAPIVersion = "THANOSQL_API_VERSION"
)

// DefaultAPIVersion is used when neither the option nor the environment
// names an API version.
const DefaultAPIVersion = "v1"

// Client talks to one ThanoSQL workspace engine. All fields are read-only
// after NewClient returns, so a Client is safe for concurrent use. Each
// service method performs exactly one HTTP round trip.
type Client struct {
	baseURL   string
	token     string
	version   string
	requester Requester
	logger    *slog.Logger

	Query  *QueryService
	Table  *TableService
	View   *ViewService
	Schema *SchemaService
	File   *FileService
}

type clientOptions struct {
	engineURL  string
	token      string
	apiVersion string
	httpClient *http.Client
	requester  Requester
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// WithEngineURL sets the engine base URL, overriding THANOSQL_ENGINE_URL.
func WithEngineURL(u string) Option {
	return func(o *clientOptions) { o.engineURL = u }
}

// WithToken sets the bearer token, overriding THANOSQL_API_TOKEN.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.token = token }
}

// WithAPIVersion sets the API version path segment (default "v1").
func WithAPIVersion(v string) Option {
	return func(o *clientOptions) { o.apiVersion = v }
}

// WithHTTPClient substitutes the http.Client used by the default transport.
// Timeouts and TLS settings are whatever that client carries; the SDK adds
// none of its own.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithRequester replaces the transport entirely. Intended for tests.
func WithRequester(r Requester) Option {
	return func(o *clientOptions) { o.requester = r }
}

// WithLogger sets the logger used for debug-level request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// NewClient builds a client. The engine URL and token resolve from explicit
// options first and the THANOSQL_* environment second; if either is still
// missing the call fails with a ConfigError.
func NewClient(opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	engineURL := firstNonEmpty(o.engineURL, os.Getenv(EnvEngineURL))
	token := firstNonEmpty(o.token, os.Getenv(EnvToken))
	version := firstNonEmpty(o.apiVersion, os.Getenv(EnvAPIVersion), DefaultAPIVersion)

	var missing []string
	if engineURL == "" {
		missing = append(missing, "engine_url")
	}
	if token == "" {
		missing = append(missing, "api_token")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		baseURL: strings.TrimRight(engineURL, "/") + "/api/" + version,
		token:   token,
		version: version,
		logger:  logger,
	}
	c.requester = o.requester
	if c.requester == nil {
		c.requester = newHTTPTransport(c.baseURL, token, o.httpClient)
	}

	c.Query = &QueryService{client: c}
	c.Query.Log = &QueryLogService{client: c}
	c.Query.Template = &QueryTemplateService{client: c}
	c.Table = &TableService{client: c}
	c.Table.Template = &TableTemplateService{client: c}
	c.View = &ViewService{client: c}
	c.Schema = &SchemaService{client: c}
	c.File = &FileService{client: c}

	return c, nil
}

// BaseURL returns the resolved API root, engine_url + "/api/" + version.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends one request and maps non-2xx replies onto APIError. Transport
// failures pass through untouched; nothing is retried or suppressed.
func (c *Client) do(ctx context.Context, req *Request) (*Response, error) {
	c.logger.Debug("engine request", "method", req.Method, "path", req.Path)

	resp, err := c.requester.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	return nil, apiErrorFrom(resp)
}

// apiErrorFrom extracts the engine's error payload from a non-2xx reply.
// The engine reports under "message", "detail", or "error_result" depending
// on the endpoint.
func apiErrorFrom(resp *Response) *APIError {
	var payload struct {
		Message     string `json:"message"`
		Detail      string `json:"detail"`
		ErrorResult string `json:"error_result"`
	}
	_ = json.Unmarshal(resp.Body, &payload)

	return &APIError{
		StatusCode:  resp.StatusCode,
		Message:     firstNonEmpty(payload.Message, payload.Detail, payload.ErrorResult),
		ErrorResult: payload.ErrorResult,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
