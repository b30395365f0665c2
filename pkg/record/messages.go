package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-recordview/pkg/schema"
)

// Message keys resolved through the bundle.
const (
	MsgSaveFailed       = "record.save_failed"
	MsgValidationFailed = "record.validation_failed"
	MsgExtraFields      = "record.extra_fields"
)

var defaultMessages = map[string]string{
	MsgSaveFailed:       "Saving failed. Please try again.",
	MsgValidationFailed: "Please fix the highlighted fields.",
	MsgExtraFields:      "These fields are not part of the form and will be removed:",
}

// ResponseBody is implemented by persister errors that carry the server's
// response payload.
type ResponseBody interface {
	ResponseBody() []byte
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// sanitize strips markup from server supplied text.
func sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(sanitizer().Sanitize(trimmed)))
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type fieldError struct {
	Path    any    `json:"path"`
	Message string `json:"message"`
}

// ServerMessages extracts the messages from a failed save. It understands
// {"error": "text"} and {"error": [{"path": [...], "message": "..."}]}.
// ok is false when err carries nothing usable.
func ServerMessages(err error) (messages []string, ok bool) {
	var body ResponseBody
	if !errors.As(err, &body) {
		return nil, false
	}
	raw := body.ResponseBody()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, false
	}

	var payload errorBody
	if json.Unmarshal(raw, &payload) != nil || len(payload.Error) == 0 {
		return nil, false
	}

	var text string
	if json.Unmarshal(payload.Error, &text) == nil {
		out := normalizeMessages([]string{sanitize(text)})
		return out, len(out) > 0
	}

	var entries []fieldError
	if json.Unmarshal(payload.Error, &entries) != nil {
		return nil, false
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		msg := sanitize(entry.Message)
		if msg == "" {
			continue
		}
		if path := sanitize(formatPath(entry.Path)); path != "" {
			msg = fmt.Sprintf("%s: %s", path, msg)
		}
		out = append(out, msg)
	}
	out = normalizeMessages(out)
	return out, len(out) > 0
}

func formatPath(path any) string {
	switch typed := path.(type) {
	case string:
		return strings.Join(schema.SplitPointer(typed), ".")
	case []any:
		parts := make([]string, 0, len(typed))
		for _, part := range typed {
			parts = append(parts, fmt.Sprint(part))
		}
		return strings.Join(parts, ".")
	default:
		return ""
	}
}

// validationMessages renders client-side errors, one line each.
func validationMessages(errs []schema.ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			msg = e.Keyword
		}
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = fmt.Sprintf("%s: %s", path, msg)
		}
		out = append(out, msg)
	}
	return normalizeMessages(out)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
