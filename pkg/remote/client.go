// Package remote talks to the lookup/search endpoints behind remote-bound
// fields: GET {apiUrl}/{id} for a single item and GET {apiUrl}?q=&limit= for
// candidates.
package remote

import (
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

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-recordview/internal/logging"
)

var log = logging.Logger("recordview-remote")

// Item is one remote entity as decoded from JSON.
type Item = map[string]any

const (
	defaultTimeout   = 10 * time.Second
	defaultCacheSize = 128
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) StatusCode() int { return e.Code }

// Client fetches remote items. Lookups are cached per endpoint and id;
// searches are not.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	header    http.Header
	cacheSize int
	cache     *lru.Cache[string, Item]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithCacheSize sets the lookup cache capacity. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(c *Client) {
		c.cacheSize = size
	}
}

// WithHeader adds a static request header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// NewClient builds a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      http.DefaultClient,
		timeout:   defaultTimeout,
		header:    make(http.Header),
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.cacheSize > 0 {
		cache, err := lru.New[string, Item](c.cacheSize)
		if err == nil {
			c.cache = cache
		}
	}
	return c
}

// Lookup fetches the single item identified by id.
func (c *Client) Lookup(ctx context.Context, apiURL, id string) (Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("remote: lookup id is empty")
	}
	endpoint := strings.TrimRight(apiURL, "/") + "/" + url.PathEscape(id)
	cacheKey := apiURL + "\x00" + id
	if c.cache != nil {
		if item, ok := c.cache.Get(cacheKey); ok {
			return cloneItem(item), nil
		}
	}

	var item Item
	if err := c.get(ctx, endpoint, &item); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("remote: %s: response is not an object", endpoint)
	}
	if c.cache != nil {
		c.cache.Add(cacheKey, cloneItem(item))
	}
	return item, nil
}

// Search returns the candidates matching query. The endpoint may answer with
// {"items": [...]}, {"data": [...]} or a bare array.
func (c *Client) Search(ctx context.Context, apiURL, query string, limit int) ([]Item, error) {
	endpoint, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse endpoint %q: %w", apiURL, err)
	}
	params := endpoint.Query()
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	endpoint.RawQuery = params.Encode()

	var payload any
	if err := c.get(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	return decodeItems(payload), nil
}

// Forget drops every cached lookup.
func (c *Client) Forget() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")

	log.Debugw("request", "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: endpoint}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: %s: decode response: %w", endpoint, err)
	}
	return nil
}

func decodeItems(payload any) []Item {
	var list []any
	switch typed := payload.(type) {
	case []any:
		list = typed
	case map[string]any:
		if items, ok := typed["items"].([]any); ok {
			list = items
		} else if data, ok := typed["data"].([]any); ok {
			list = data
		}
	}

	out := make([]Item, 0, len(list))
	for _, entry := range list {
		if item, ok := entry.(map[string]any); ok {
			out = append(out, item)
		}
	}
	return out
}

func cloneItem(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for key, value := range item {
		out[key] = value
	}
	return out
}
