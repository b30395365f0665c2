// Package localize produces language-specific views of a schema and UI
// schema pair. Inputs are never mutated; every call returns a fresh tree.
package localize

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-recordview/pkg/i18n"
	"github.com/goliatone/go-recordview/pkg/schema"
)

// EnumKeyPrefixes are tried in order when looking up a display title for an
// enum value. The bare value is tried last.
var EnumKeyPrefixes = []string{"status", "domain", "type", "entity_type", "role"}

// TranslateSchema returns a translated clone of node. Titles and
// descriptions are passed through t; a bare description doubles as the
// title. Every enum becomes a oneOf whose const keeps the raw value.
func TranslateSchema(node *schema.Node, t i18n.TranslateFunc) *schema.Node {
	if node == nil {
		return nil
	}
	if t == nil {
		t = i18n.Identity
	}
	return translateNode(node.Clone(), t)
}

// translateNode rewrites an already cloned tree in place.
func translateNode(node *schema.Node, t i18n.TranslateFunc) *schema.Node {
	if node == nil {
		return nil
	}

	switch {
	case node.Title != "":
		node.Title = t(node.Title)
	case node.Description != "":
		node.Title = t(node.Description)
	}
	if node.Description != "" {
		node.Description = t(node.Description)
	}

	if node.Enum != nil {
		options := make([]*schema.Node, 0, len(node.Enum))
		for _, value := range node.Enum {
			options = append(options, schema.NewOption(value, EnumTitle(value, t)))
		}
		node.OneOf = options
		node.Enum = nil
	} else {
		for _, entry := range node.OneOf {
			translateNode(entry, t)
		}
	}

	for _, property := range node.Properties {
		translateNode(property, t)
	}
	translateNode(node.Items, t)
	for _, definition := range node.Definitions {
		translateNode(definition, t)
	}
	return node
}

// EnumTitle returns the display title for an enum value: the first
// candidate key with a real mapping, otherwise the raw value.
func EnumTitle(value any, t i18n.TranslateFunc) string {
	raw := valueString(value)
	if t == nil {
		return raw
	}
	for _, candidate := range EnumKeyCandidates(value) {
		if translated := t(candidate); translated != candidate {
			return translated
		}
	}
	return raw
}

// EnumKeyCandidates lists the lookup keys tried for value, in order.
func EnumKeyCandidates(value any) []string {
	raw := valueString(value)
	out := make([]string, 0, len(EnumKeyPrefixes)+1)
	for _, prefix := range EnumKeyPrefixes {
		out = append(out, prefix+"."+raw)
	}
	return append(out, raw)
}

// TranslateUISchema returns a clone of node with every label passed through
// t. Scope, type and options are left alone.
func TranslateUISchema(node schema.UINode, t i18n.TranslateFunc) schema.UINode {
	if node == nil {
		return nil
	}
	if t == nil {
		t = i18n.Identity
	}
	clone := node.Clone()
	schema.WalkUI(clone, func(element schema.UINode) bool {
		if base := element.Common(); base.Label != "" {
			base.Label = t(base.Label)
		}
		return true
	})
	return clone
}

func valueString(value any) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}
