package thanosql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Request is a single call against the engine, already reduced to the wire
// essentials. Body is JSON-encoded when set; Upload switches the request to
// a multipart form.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Upload *Upload
}

// Upload describes a local file sent as the "file" part of a multipart
// request, with optional extra form fields alongside it.
type Upload struct {
	Path   string
	Fields map[string]string
}

// Response is the raw engine reply before decoding.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Requester is the narrow transport interface the client depends on. The
// default implementation speaks HTTP with a bearer token; tests substitute
// their own.
type Requester interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

type httpTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

func newHTTPTransport(baseURL, token string, client *http.Client) *httpTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpTransport{baseURL: baseURL, token: token, client: client}
}

func (t *httpTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	op := req.Method + " " + req.Path

	fullURL := t.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Upload != nil:
		buf, ct, err := encodeMultipart(req.Upload)
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		body, contentType = buf, ct
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &TransportError{Op: op, Err: fmt.Errorf("encode request body: %w", err)}
		}
		body, contentType = bytes.NewReader(encoded), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.token)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	return &Response{StatusCode: resp.StatusCode, Body: data, Header: resp.Header}, nil
}

// encodeMultipart builds the multipart form for a file upload. The file goes
// into the "file" part; extra fields ride along as plain form values.
func encodeMultipart(up *Upload) (*bytes.Buffer, string, error) {
	f, err := os.Open(up.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", filepath.Base(up.Path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read upload file: %w", err)
	}

	for key, value := range up.Fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
