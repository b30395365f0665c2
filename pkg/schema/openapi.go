package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const componentRefPrefix = "#/components/schemas/"

// FromOpenAPI converts the named components.schemas entry of an OpenAPI 3
// document into a Node. The other component schemas are carried as
// definitions so "$ref" pointers keep resolving after the conversion.
func FromOpenAPI(ctx context.Context, raw []byte, component string) (*Node, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	component = strings.TrimSpace(component)
	if component == "" {
		return nil, errors.New("openapi: component name is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("openapi: document has no component schemas")
	}

	target, ok := spec.Components.Schemas[component]
	if !ok || target == nil || target.Value == nil {
		return nil, fmt.Errorf("openapi: component schema %q not found", component)
	}

	root := convertOpenAPISchema(target.Value)

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		if name != component {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > 0 {
		root.Definitions = make(map[string]*Node, len(names))
		for _, name := range names {
			ref := spec.Components.Schemas[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			root.Definitions[name] = convertOpenAPISchema(ref.Value)
		}
	}
	// The root component may reference itself (trees, linked lists).
	root.Definitions = ensureNodeMap(root.Definitions)
	if _, exists := root.Definitions[component]; !exists {
		root.Definitions[component] = &Node{Extra: map[string]any{"$ref": "#"}}
	}
	return root, nil
}

func convertOpenAPIRef(ref *openapi3.SchemaRef) *Node {
	if ref == nil {
		return nil
	}
	if strings.HasPrefix(ref.Ref, componentRefPrefix) {
		name := strings.TrimPrefix(ref.Ref, componentRefPrefix)
		return &Node{Extra: map[string]any{"$ref": "#/definitions/" + name}}
	}
	if ref.Value == nil {
		return nil
	}
	return convertOpenAPISchema(ref.Value)
}

func convertOpenAPISchema(src *openapi3.Schema) *Node {
	node := &Node{
		Title:       src.Title,
		Description: src.Description,
	}

	if src.Type != nil {
		types := src.Type.Slice()
		switch len(types) {
		case 0:
		case 1:
			node.Set("type", types[0])
		default:
			values := make([]any, len(types))
			for i, typ := range types {
				values[i] = typ
			}
			node.Set("type", values)
		}
	}
	if src.Format != "" {
		node.Set("format", src.Format)
	}
	if len(src.Required) > 0 {
		required := make([]any, len(src.Required))
		for i, name := range src.Required {
			required[i] = name
		}
		node.Set("required", required)
	}
	if src.Default != nil {
		node.Set("default", src.Default)
	}
	if len(src.Enum) > 0 {
		node.Enum = append([]any(nil), src.Enum...)
	}
	if src.Pattern != "" {
		node.Set("pattern", src.Pattern)
	}
	if src.MinLength != 0 {
		node.Set("minLength", src.MinLength)
	}
	if src.MaxLength != nil {
		node.Set("maxLength", *src.MaxLength)
	}
	if src.Min != nil {
		node.Set("minimum", *src.Min)
	}
	if src.Max != nil {
		node.Set("maximum", *src.Max)
	}
	if src.ReadOnly {
		node.Set("readOnly", true)
	}
	if has := src.AdditionalProperties.Has; has != nil && !*has {
		node.Set("additionalProperties", false)
	}

	if len(src.Properties) > 0 {
		node.Properties = make(map[string]*Node, len(src.Properties))
		for name, property := range src.Properties {
			if converted := convertOpenAPIRef(property); converted != nil {
				node.Properties[name] = converted
			}
		}
	}
	if src.Items != nil {
		node.Items = convertOpenAPIRef(src.Items)
	}
	if len(src.OneOf) > 0 {
		node.OneOf = make([]*Node, 0, len(src.OneOf))
		for _, entry := range src.OneOf {
			if converted := convertOpenAPIRef(entry); converted != nil {
				node.OneOf = append(node.OneOf, converted)
			}
		}
	}
	return node
}

func ensureNodeMap(in map[string]*Node) map[string]*Node {
	if in != nil {
		return in
	}
	return make(map[string]*Node)
}
