package schema

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ResolveScope follows a UI scope such as "#/properties/address/properties/city"
// from root. Only properties, items and definitions are traversed.
func ResolveScope(root *Node, scope string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	trimmed := strings.TrimSpace(scope)
	if trimmed == "#" || trimmed == "#/" {
		return root, true
	}
	if !strings.HasPrefix(trimmed, "#/") {
		return nil, false
	}

	segments := SplitPointer(trimmed)
	current := root
	for idx := 0; idx < len(segments); idx++ {
		if current == nil {
			return nil, false
		}
		switch segments[idx] {
		case "properties", "definitions":
			if idx+1 >= len(segments) {
				return nil, false
			}
			source := current.Properties
			if segments[idx] == "definitions" {
				source = current.Definitions
			}
			next, ok := source[segments[idx+1]]
			if !ok {
				return nil, false
			}
			current = next
			idx++
		case "items":
			current = current.Items
		default:
			return nil, false
		}
	}
	return current, current != nil
}

// CheckScopes reports every Control whose scope does not resolve against
// root. The returned error aggregates all offending controls.
func CheckScopes(ui UINode, root *Node) error {
	var result *multierror.Error
	WalkUI(ui, func(element UINode) bool {
		control, ok := element.(*Control)
		if !ok {
			return true
		}
		scope := strings.TrimSpace(control.Scope)
		if scope == "" {
			result = multierror.Append(result, fmt.Errorf("uischema: control %q has no scope", control.Label))
			return true
		}
		if _, ok := ResolveScope(root, scope); !ok {
			result = multierror.Append(result, fmt.Errorf("uischema: scope %q does not resolve", scope))
		}
		return true
	})
	return result.ErrorOrNil()
}
