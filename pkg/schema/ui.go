package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UIKind discriminates the UI schema variants.
type UIKind string

const (
	KindControl UIKind = "control"
	KindGroup   UIKind = "group"
	KindLayout  UIKind = "layout"
)

// UI schema type names with dedicated variants.
const (
	TypeControl = "Control"
	TypeGroup   = "Group"
)

// UINode is a UI schema element. Controls bind a scope; groups and layouts
// hold ordered child elements.
type UINode interface {
	Kind() UIKind
	Common() *UIBase
	Clone() UINode
	json.Marshaler
}

// Container is implemented by the variants that carry child elements.
type Container interface {
	UINode
	Children() []UINode
	SetChildren(children []UINode)
}

// UIBase is the shape shared by every variant. Type keeps the raw
// discriminator so layouts such as "HorizontalLayout" survive a round trip.
type UIBase struct {
	Type    string
	Label   string
	Scope   string
	Options map[string]any
	Extra   map[string]any
}

// Control renders a single schema field.
type Control struct {
	UIBase
}

// Group is a labelled container.
type Group struct {
	UIBase
	Elements []UINode
}

// Layout is any other container (vertical/horizontal layouts,
// categorizations, categories and unknown element types).
type Layout struct {
	UIBase
	Elements []UINode
}

func (c *Control) Kind() UIKind    { return KindControl }
func (c *Control) Common() *UIBase { return &c.UIBase }

func (c *Control) Clone() UINode {
	if c == nil {
		return nil
	}
	return &Control{UIBase: c.UIBase.clone()}
}

func (c *Control) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.UIBase.fields(nil, false))
}

func (g *Group) Kind() UIKind                  { return KindGroup }
func (g *Group) Common() *UIBase               { return &g.UIBase }
func (g *Group) Children() []UINode            { return g.Elements }
func (g *Group) SetChildren(children []UINode) { g.Elements = children }

func (g *Group) Clone() UINode {
	if g == nil {
		return nil
	}
	return &Group{UIBase: g.UIBase.clone(), Elements: cloneElements(g.Elements)}
}

func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.UIBase.fields(g.Elements, true))
}

func (l *Layout) Kind() UIKind                  { return KindLayout }
func (l *Layout) Common() *UIBase               { return &l.UIBase }
func (l *Layout) Children() []UINode            { return l.Elements }
func (l *Layout) SetChildren(children []UINode) { l.Elements = children }

func (l *Layout) Clone() UINode {
	if l == nil {
		return nil
	}
	return &Layout{UIBase: l.UIBase.clone(), Elements: cloneElements(l.Elements)}
}

func (l *Layout) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.UIBase.fields(l.Elements, true))
}

func (b UIBase) clone() UIBase {
	out := UIBase{Type: b.Type, Label: b.Label, Scope: b.Scope}
	if b.Options != nil {
		out.Options = deepCopy(b.Options).(map[string]any)
	}
	if b.Extra != nil {
		out.Extra = deepCopy(b.Extra).(map[string]any)
	}
	return out
}

func (b UIBase) fields(elements []UINode, container bool) map[string]any {
	out := make(map[string]any, len(b.Extra)+5)
	for key, value := range b.Extra {
		out[key] = value
	}
	if b.Type != "" {
		out["type"] = b.Type
	}
	if b.Label != "" {
		out["label"] = b.Label
	}
	if b.Scope != "" {
		out["scope"] = b.Scope
	}
	if b.Options != nil {
		out["options"] = b.Options
	}
	if container && elements != nil {
		out["elements"] = elements
	}
	return out
}

func cloneElements(elements []UINode) []UINode {
	if elements == nil {
		return nil
	}
	out := make([]UINode, len(elements))
	for i, element := range elements {
		if element != nil {
			out[i] = element.Clone()
		}
	}
	return out
}

// ParseUINode decodes a UI schema document into its variant tree.
func ParseUINode(data []byte) (UINode, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("uischema: element must be an object: %w", err)
	}

	var base UIBase
	var elements []json.RawMessage
	hasElements := false

	for key, value := range raw {
		switch key {
		case "type":
			if json.Unmarshal(value, &base.Type) == nil {
				continue
			}
		case "label":
			if json.Unmarshal(value, &base.Label) == nil {
				continue
			}
		case "scope":
			if json.Unmarshal(value, &base.Scope) == nil {
				continue
			}
		case "options":
			if json.Unmarshal(value, &base.Options) == nil {
				continue
			}
		case "elements":
			if json.Unmarshal(value, &elements) == nil {
				hasElements = true
				continue
			}
		}
		var passthrough any
		if err := json.Unmarshal(value, &passthrough); err != nil {
			return nil, fmt.Errorf("uischema: key %q: %w", key, err)
		}
		if base.Extra == nil {
			base.Extra = make(map[string]any)
		}
		base.Extra[key] = passthrough
	}

	var children []UINode
	if hasElements {
		children = make([]UINode, 0, len(elements))
		for idx, rawChild := range elements {
			child, err := ParseUINode(rawChild)
			if err != nil {
				return nil, fmt.Errorf("uischema: elements[%d]: %w", idx, err)
			}
			children = append(children, child)
		}
	}

	switch strings.TrimSpace(base.Type) {
	case TypeControl:
		if hasElements {
			// Controls do not nest; keep the payload so nothing is lost.
			var passthrough any
			_ = json.Unmarshal(raw["elements"], &passthrough)
			if base.Extra == nil {
				base.Extra = make(map[string]any)
			}
			base.Extra["elements"] = passthrough
		}
		return &Control{UIBase: base}, nil
	case TypeGroup:
		return &Group{UIBase: base, Elements: children}, nil
	default:
		return &Layout{UIBase: base, Elements: children}, nil
	}
}

// WalkUI visits every element depth first, parents before children. Returning
// false from fn skips the element's children.
func WalkUI(node UINode, fn func(UINode) bool) {
	if node == nil || fn == nil {
		return
	}
	if !fn(node) {
		return
	}
	if container, ok := node.(Container); ok {
		for _, child := range container.Children() {
			WalkUI(child, fn)
		}
	}
}

// Controls returns every Control in document order.
func Controls(node UINode) []*Control {
	var out []*Control
	WalkUI(node, func(element UINode) bool {
		if control, ok := element.(*Control); ok {
			out = append(out, control)
		}
		return true
	})
	return out
}
