package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordview/pkg/schema"
)

const articleUISchema = `{
  "type": "VerticalLayout",
  "elements": [
    {"type": "Control", "label": "fields.name", "scope": "#/properties/name"},
    {
      "type": "Group",
      "label": "groups.meta",
      "elements": [
        {"type": "Control", "scope": "#/properties/status", "options": {"format": "radio"}},
        {"type": "Control", "scope": "#/properties/tags", "label": false}
      ]
    },
    {"type": "HorizontalLayout", "elements": []}
  ]
}`

func TestParseUINode_Variants(t *testing.T) {
	root, err := schema.ParseUINode([]byte(articleUISchema))
	if err != nil {
		t.Fatalf("ParseUINode: %v", err)
	}

	layout, ok := root.(*schema.Layout)
	if !ok {
		t.Fatalf("expected layout root, got %T", root)
	}
	if layout.Type != "VerticalLayout" || len(layout.Elements) != 3 {
		t.Fatalf("unexpected layout: %#v", layout)
	}
	if _, ok := layout.Elements[0].(*schema.Control); !ok {
		t.Fatalf("expected control, got %T", layout.Elements[0])
	}
	group, ok := layout.Elements[1].(*schema.Group)
	if !ok {
		t.Fatalf("expected group, got %T", layout.Elements[1])
	}
	if group.Label != "groups.meta" || len(group.Children()) != 2 {
		t.Fatalf("unexpected group: %#v", group)
	}

	hidden := group.Elements[1].(*schema.Control)
	if hidden.Label != "" || hidden.Extra["label"] != false {
		t.Fatalf("boolean label should pass through Extra: %#v", hidden.UIBase)
	}
	if nested := layout.Elements[2].(*schema.Layout); nested.Type != "HorizontalLayout" || nested.Elements == nil {
		t.Fatalf("empty elements should be kept: %#v", nested)
	}

	controls := schema.Controls(root)
	scopes := make([]string, 0, len(controls))
	for _, control := range controls {
		scopes = append(scopes, control.Scope)
	}
	want := []string{"#/properties/name", "#/properties/status", "#/properties/tags"}
	if diff := cmp.Diff(want, scopes); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
}

func TestUINode_RoundTripAndClone(t *testing.T) {
	root, err := schema.ParseUINode([]byte(articleUISchema))
	if err != nil {
		t.Fatalf("ParseUINode: %v", err)
	}
	clone := root.Clone()
	clone.(*schema.Layout).Elements[0].Common().Label = "changed"

	if root.(*schema.Layout).Elements[0].Common().Label != "fields.name" {
		t.Fatalf("clone shares children")
	}

	encoded, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var want, got any
	_ = json.Unmarshal([]byte(articleUISchema), &want)
	_ = json.Unmarshal(encoded, &got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidationError_Path(t *testing.T) {
	err := schema.ValidationError{
		Keyword:      schema.KeywordAdditionalProperties,
		InstancePath: "/address/a~1b/0",
		Params:       map[string]any{"additionalProperty": "zip"},
		Message:      "must NOT have additional properties",
	}
	if !err.IsAdditionalProperty() || err.AdditionalProperty() != "zip" {
		t.Fatalf("additional property not detected: %#v", err)
	}
	if diff := cmp.Diff([]string{"address", "a/b", "0"}, err.Path()); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if got := schema.JoinPointer(err.Path()); got != err.InstancePath {
		t.Fatalf("JoinPointer = %q", got)
	}
	if len((schema.ValidationError{}).Path()) != 0 {
		t.Fatalf("root path should be empty")
	}
}
