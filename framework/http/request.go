package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxBody = 1 << 20 // 1 MB

// ErrEmptyBody is returned by BindYAML when the request has no body.
var ErrEmptyBody = errors.New("empty request body")

// Request wraps *http.Request with Laravel-style helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// ── Binding ──────────────────────────────────────────────────────────────────

// BindYAML decodes a YAML or JSON body into v via `yaml:"name"` tags.
// Fields of type yaml.Node receive the raw subtree, keeping key order.
func (req *Request) BindYAML(v any) error {
	body, err := req.body()
	if err != nil {
		return err
	}
	return yaml.Unmarshal(body, v)
}

func (req *Request) body() ([]byte, error) {
	if req.raw.Body == nil {
		return nil, ErrEmptyBody
	}
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyBody
	}
	return body, nil
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// MediaType returns the Content-Type without parameters, lower-cased.
// It is "" when the header is absent or unparsable.
func (req *Request) MediaType() string {
	mt, _, err := mime.ParseMediaType(req.Header("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// AcceptsDocument reports whether the body is JSON or YAML, or untyped.
func (req *Request) AcceptsDocument() bool {
	switch req.MediaType() {
	case "", "application/json", "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}
