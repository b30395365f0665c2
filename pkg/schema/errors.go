package schema

import (
	"fmt"
	"strings"
)

// KeywordAdditionalProperties marks the recoverable extra-field violation.
const KeywordAdditionalProperties = "additionalProperties"

// ValidationError is a single violation reported by the form renderer.
type ValidationError struct {
	Keyword      string         `json:"keyword"`
	InstancePath string         `json:"instancePath"`
	Params       map[string]any `json:"params,omitempty"`
	Message      string         `json:"message"`
}

func (e ValidationError) Error() string {
	if e.InstancePath == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.InstancePath, e.Message)
}

// IsAdditionalProperty reports whether the violation names a property the
// schema does not declare.
func (e ValidationError) IsAdditionalProperty() bool {
	return e.Keyword == KeywordAdditionalProperties
}

// AdditionalProperty returns params.additionalProperty.
func (e ValidationError) AdditionalProperty() string {
	if e.Params == nil {
		return ""
	}
	name, _ := e.Params["additionalProperty"].(string)
	return name
}

// Path splits InstancePath into unescaped segments. The root path yields an
// empty slice.
func (e ValidationError) Path() []string {
	return SplitPointer(e.InstancePath)
}

// SplitPointer splits a "/"-delimited JSON pointer, decoding ~1 and ~0.
func SplitPointer(pointer string) []string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return []string{}
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}

// JoinPointer is the inverse of SplitPointer.
func JoinPointer(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		segment = strings.ReplaceAll(segment, "/", "~1")
		builder.WriteString("/")
		builder.WriteString(segment)
	}
	return builder.String()
}
