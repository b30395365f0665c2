package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader reads schema, UI schema and record documents from files, an fs.FS
// or HTTP. Documents may be JSON or YAML.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS enables SourceKindFS lookups against fsys.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.http = client
	}
}

// WithTimeout bounds each HTTP fetch.
func WithTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// NewLoader builds a Loader. URL sources are disabled until WithHTTPClient
// is supplied.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// LoadSchema fetches and decodes a schema document.
func (l *Loader) LoadSchema(ctx context.Context, src Source) (*Node, error) {
	data, err := l.loadJSON(ctx, src)
	if err != nil {
		return nil, err
	}
	node, err := ParseNode(data)
	if err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", src.Location(), err)
	}
	return node, nil
}

// LoadUISchema fetches and decodes a UI schema document.
func (l *Loader) LoadUISchema(ctx context.Context, src Source) (UINode, error) {
	data, err := l.loadJSON(ctx, src)
	if err != nil {
		return nil, err
	}
	node, err := ParseUINode(data)
	if err != nil {
		return nil, fmt.Errorf("uischema: parse %s: %w", src.Location(), err)
	}
	return node, nil
}

// LoadRecord fetches a record document (a JSON/YAML object).
func (l *Loader) LoadRecord(ctx context.Context, src Source) (map[string]any, error) {
	data, err := l.loadJSON(ctx, src)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("schema: record %s must be an object: %w", src.Location(), err)
	}
	if record == nil {
		record = make(map[string]any)
	}
	return record, nil
}

func (l *Loader) loadJSON(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("schema loader: source is nil")
	}
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("schema loader: %s: %w", src.Location(), err)
	}
	return ToJSON(data, src.Location())
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind() {
	case SourceKindFile:
		return os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("filesystem is not configured")
		}
		return fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("http support disabled")
		}
		return l.fetch(ctx, src.Location())
	default:
		return nil, errors.New("unsupported source kind")
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	reqCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// ToJSON returns data unchanged when it is valid JSON and otherwise converts
// a YAML document to JSON. source only decorates error messages.
func ToJSON(data []byte, source string) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("schema: %s is empty", source)
	}
	if json.Valid(trimmed) {
		return trimmed, nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
	}
	out, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, fmt.Errorf("schema: convert %s: %w", source, err)
	}
	return out, nil
}

// normalizeYAML rewrites map[any]any nodes (non-string YAML keys) into
// map[string]any so the tree can be encoded as JSON.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for k, v := range typed {
			typed[k] = normalizeYAML(v)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return out
	case []any:
		for i, v := range typed {
			typed[i] = normalizeYAML(v)
		}
		return typed
	default:
		return typed
	}
}
