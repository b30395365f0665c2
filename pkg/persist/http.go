// Package persist sends record payloads to a REST collection: POST {base}
// creates and PUT {base}/{id} updates.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-recordview/internal/logging"
	"github.com/goliatone/go-recordview/pkg/record"
)

var log = logging.Logger("recordview-persist")

const maxErrorBody = 1 << 20

// StatusError reports a non-2xx response and keeps its body for error
// interpretation.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("persist: unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func (e *StatusError) ResponseBody() []byte { return e.Body }

// HTTP is a record.Persister backed by a REST collection.
type HTTP struct {
	base    string
	client  *http.Client
	timeout time.Duration
	header  http.Header
}

// Option configures HTTP.
type Option func(*HTTP)

func WithHTTPClient(client *http.Client) Option {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		h.timeout = timeout
	}
}

// WithHeader adds a static request header, e.g. an API key.
func WithHeader(key, value string) Option {
	return func(h *HTTP) {
		h.header.Add(key, value)
	}
}

// NewHTTP builds a persister for the collection at baseURL.
func NewHTTP(baseURL string, opts ...Option) (*HTTP, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("persist: invalid base url %q", baseURL)
	}
	h := &HTTP{
		base:    baseURL,
		client:  http.DefaultClient,
		timeout: 10 * time.Second,
		header:  make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// BaseURL returns the collection URL without a trailing slash.
func (h *HTTP) BaseURL() string { return h.base }

// Persist implements record.Persister.
func (h *HTTP) Persist(ctx context.Context, op record.Op, id any, payload record.Document) (record.Document, error) {
	method, target := http.MethodPost, h.base
	if op == record.OpUpdate {
		key := formatID(id)
		if key == "" {
			return nil, errors.New("persist: update requires an id")
		}
		method, target = http.MethodPut, h.base+"/"+url.PathEscape(key)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("persist: encode payload: %w", err)
	}

	reqCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("persist: build request: %w", err)
	}
	for key, values := range h.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debugw("persist", "method", method, "url", target)
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("persist: %s %s: %w", method, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: raw}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("persist: read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return record.Document{}, nil
	}
	var saved record.Document
	if err := json.Unmarshal(raw, &saved); err != nil {
		// A 2xx status means the record was stored; the body is advisory.
		log.Debugw("response body is not a JSON object", "op", op, "status", resp.StatusCode, "error", err)
		return record.Document{}, nil
	}
	return saved, nil
}

func formatID(id any) string {
	switch typed := id.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
