package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Node is one level of a JSON Schema tree. The keywords the record view
// works with are modelled explicitly; everything else (type, required,
// format, $ref, additionalProperties, ...) round-trips through Extra.
type Node struct {
	Title       string
	Description string
	// Const is only meaningful when HasConst is set, so `const: null`
	// survives a round trip.
	Const       any
	HasConst    bool
	Enum        []any
	OneOf       []*Node
	Properties  map[string]*Node
	Items       *Node
	Definitions map[string]*Node
	Extra       map[string]any
}

// Option is a oneOf entry in its {const, title} form.
type Option struct {
	Const any    `json:"const"`
	Title string `json:"title"`
}

// NewOption builds a oneOf entry node.
func NewOption(value any, title string) *Node {
	return &Node{Const: value, HasConst: true, Title: title}
}

// Type returns the `type` keyword when it is a single string.
func (n *Node) Type() string {
	if n == nil || n.Extra == nil {
		return ""
	}
	value, _ := n.Extra["type"].(string)
	return value
}

// Required lists the `required` keyword entries.
func (n *Node) Required() []string {
	if n == nil || n.Extra == nil {
		return nil
	}
	switch typed := n.Extra["required"].(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, entry := range typed {
			if name, ok := entry.(string); ok {
				out = append(out, name)
			}
		}
		return out
	}
	return nil
}

// Set stores an unmodelled keyword.
func (n *Node) Set(keyword string, value any) {
	if n == nil {
		return
	}
	if n.Extra == nil {
		n.Extra = make(map[string]any)
	}
	n.Extra[keyword] = value
}

// Options returns the oneOf entries that carry a const.
func (n *Node) Options() []Option {
	if n == nil || len(n.OneOf) == 0 {
		return nil
	}
	out := make([]Option, 0, len(n.OneOf))
	for _, entry := range n.OneOf {
		if entry == nil || !entry.HasConst {
			continue
		}
		out = append(out, Option{Const: entry.Const, Title: entry.Title})
	}
	return out
}

// PropertyNames returns the property names in sorted order.
func (n *Node) PropertyNames() []string {
	if n == nil || len(n.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Title:       n.Title,
		Description: n.Description,
		Const:       deepCopy(n.Const),
		HasConst:    n.HasConst,
		Items:       n.Items.Clone(),
		Properties:  cloneNodeMap(n.Properties),
		Definitions: cloneNodeMap(n.Definitions),
	}
	if n.Enum != nil {
		out.Enum = make([]any, len(n.Enum))
		for i, value := range n.Enum {
			out.Enum[i] = deepCopy(value)
		}
	}
	if n.OneOf != nil {
		out.OneOf = make([]*Node, len(n.OneOf))
		for i, entry := range n.OneOf {
			out.OneOf[i] = entry.Clone()
		}
	}
	if n.Extra != nil {
		out.Extra = deepCopy(n.Extra).(map[string]any)
	}
	return out
}

func cloneNodeMap(in map[string]*Node) map[string]*Node {
	if in == nil {
		return nil
	}
	out := make(map[string]*Node, len(in))
	for key, value := range in {
		out[key] = value.Clone()
	}
	return out
}

// MarshalJSON writes the modelled keywords over the Extra passthrough.
func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Extra)+8)
	for key, value := range n.Extra {
		out[key] = value
	}
	if n.Title != "" {
		out["title"] = n.Title
	}
	if n.Description != "" {
		out["description"] = n.Description
	}
	if n.HasConst {
		out["const"] = n.Const
	}
	if n.Enum != nil {
		out["enum"] = n.Enum
	}
	if n.OneOf != nil {
		out["oneOf"] = n.OneOf
	}
	if n.Properties != nil {
		out["properties"] = n.Properties
	}
	if n.Items != nil {
		out["items"] = n.Items
	}
	if n.Definitions != nil {
		out["definitions"] = n.Definitions
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a schema object. Keywords whose shape does not match
// the modelled field (tuple `items`, boolean sub-schemas, non-string titles)
// are kept verbatim in Extra.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: node must be an object: %w", err)
	}

	*n = Node{}
	for key, value := range raw {
		if !n.decodeKeyword(key, value) {
			var passthrough any
			if err := json.Unmarshal(value, &passthrough); err != nil {
				return fmt.Errorf("schema: keyword %q: %w", key, err)
			}
			n.Set(key, passthrough)
		}
	}
	return nil
}

func (n *Node) decodeKeyword(key string, value json.RawMessage) bool {
	switch key {
	case "title":
		return json.Unmarshal(value, &n.Title) == nil
	case "description":
		return json.Unmarshal(value, &n.Description) == nil
	case "const":
		if err := json.Unmarshal(value, &n.Const); err != nil {
			return false
		}
		n.HasConst = true
		return true
	case "enum":
		var values []any
		if err := json.Unmarshal(value, &values); err != nil || values == nil {
			return false
		}
		n.Enum = values
		return true
	case "oneOf":
		var entries []*Node
		if err := json.Unmarshal(value, &entries); err != nil || entries == nil {
			return false
		}
		n.OneOf = entries
		return true
	case "properties":
		var props map[string]*Node
		if err := json.Unmarshal(value, &props); err != nil || props == nil {
			return false
		}
		n.Properties = props
		return true
	case "items":
		var items Node
		if err := json.Unmarshal(value, &items); err != nil {
			return false
		}
		n.Items = &items
		return true
	case "definitions":
		var defs map[string]*Node
		if err := json.Unmarshal(value, &defs); err != nil || defs == nil {
			return false
		}
		n.Definitions = defs
		return true
	}
	return false
}

// ParseNode decodes a JSON schema document.
func ParseNode(data []byte) (*Node, error) {
	var node Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}
