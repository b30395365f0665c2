package localize_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordview/pkg/i18n"
	"github.com/goliatone/go-recordview/pkg/localize"
	"github.com/goliatone/go-recordview/pkg/schema"
)

func dictionary(entries map[string]string) i18n.TranslateFunc {
	return func(key string) string {
		if msg, ok := entries[key]; ok {
			return msg
		}
		return key
	}
}

func mustParse(t *testing.T, raw string) *schema.Node {
	t.Helper()
	node, err := schema.ParseNode([]byte(raw))
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	return node
}

func TestTranslateSchema_DoesNotMutateInput(t *testing.T) {
	node := mustParse(t, `{
	  "title": "record.title",
	  "properties": {
	    "status": {"title": "fields.status", "enum": ["A", "B"]}
	  }
	}`)
	saved := node.Clone()

	tr := dictionary(map[string]string{"record.title": "Record", "fields.status": "Status", "status.A": "Alpha"})
	out := localize.TranslateSchema(node, tr)

	if out == node || out.Properties["status"] == node.Properties["status"] {
		t.Fatalf("expected a cloned tree")
	}
	if out.Title != "Record" {
		t.Fatalf("title not translated: %q", out.Title)
	}
	if diff := cmp.Diff(saved, node); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestTranslateSchema_EnumBecomesOneOf(t *testing.T) {
	node := mustParse(t, `{"enum": ["A", "B"]}`)
	tr := dictionary(map[string]string{"status.A": "Translated A"})

	out := localize.TranslateSchema(node, tr)

	if out.Enum != nil {
		t.Fatalf("enum must be replaced, got %#v", out.Enum)
	}
	want := []schema.Option{{Const: "A", Title: "Translated A"}, {Const: "B", Title: "B"}}
	if diff := cmp.Diff(want, out.Options()); diff != "" {
		t.Fatalf("oneOf mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateSchema_EnumCandidateOrder(t *testing.T) {
	node := mustParse(t, `{"enum": ["ADMIN", "ORG", "BARE", 2, null]}`)
	tr := dictionary(map[string]string{
		"role.ADMIN":      "Administrator",
		"type.ADMIN":      "Admin type",
		"domain.ORG":      "Organisation",
		"entity_type.ORG": "Org entity",
		"BARE":            "Bare value",
		"status.2":        "Two",
	})

	out := localize.TranslateSchema(node, tr)
	want := []schema.Option{
		{Const: "ADMIN", Title: "Admin type"},
		{Const: "ORG", Title: "Organisation"},
		{Const: "BARE", Title: "Bare value"},
		{Const: float64(2), Title: "Two"},
		{Const: nil, Title: "null"},
	}
	if diff := cmp.Diff(want, out.Options()); diff != "" {
		t.Fatalf("oneOf mismatch (-want +got):\n%s", diff)
	}

	encoded, _ := json.Marshal(out)
	var decoded map[string]any
	_ = json.Unmarshal(encoded, &decoded)
	if _, ok := decoded["enum"]; ok {
		t.Fatalf("localized node must not carry both enum and oneOf: %s", encoded)
	}
}

func TestTranslateSchema_DescriptionDoublesAsTitle(t *testing.T) {
	tr := dictionary(map[string]string{"My Desc": "Meine Beschreibung"})
	out := localize.TranslateSchema(&schema.Node{Description: "My Desc"}, tr)

	if out.Title != tr("My Desc") || out.Description != tr("My Desc") {
		t.Fatalf("unexpected title/description: %q / %q", out.Title, out.Description)
	}
}

func TestTranslateSchema_Recurses(t *testing.T) {
	node := mustParse(t, `{
	  "properties": {
	    "address": {"properties": {"city": {"title": "fields.city"}}},
	    "tags": {"items": {"title": "fields.tag", "enum": ["x"]}},
	    "kind": {"oneOf": [{"const": "k1", "title": "kinds.k1"}]}
	  },
	  "definitions": {"person": {"description": "defs.person"}}
	}`)
	tr := dictionary(map[string]string{
		"fields.city": "City",
		"fields.tag":  "Tag",
		"kinds.k1":    "Kind one",
		"defs.person": "Person",
		"type.x":      "Ex",
	})

	out := localize.TranslateSchema(node, tr)

	if got := out.Properties["address"].Properties["city"].Title; got != "City" {
		t.Errorf("nested property title = %q", got)
	}
	if got := out.Properties["tags"].Items.Title; got != "Tag" {
		t.Errorf("items title = %q", got)
	}
	if diff := cmp.Diff([]schema.Option{{Const: "x", Title: "Ex"}}, out.Properties["tags"].Items.Options()); diff != "" {
		t.Errorf("items enum mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]schema.Option{{Const: "k1", Title: "Kind one"}}, out.Properties["kind"].Options()); diff != "" {
		t.Errorf("oneOf title mismatch (-want +got):\n%s", diff)
	}
	if got := out.Definitions["person"].Title; got != "Person" {
		t.Errorf("definition title = %q", got)
	}
}

func TestTranslateSchema_NilInputs(t *testing.T) {
	if localize.TranslateSchema(nil, i18n.Identity) != nil {
		t.Fatalf("nil schema should stay nil")
	}
	out := localize.TranslateSchema(&schema.Node{Title: "x", Enum: []any{"A"}}, nil)
	if out.Title != "x" || out.Options()[0].Title != "A" {
		t.Fatalf("nil translator should behave as identity: %#v", out)
	}
}

func TestTranslateUISchema_OnlyRewritesLabels(t *testing.T) {
	ui, err := schema.ParseUINode([]byte(`{
	  "type": "VerticalLayout",
	  "elements": [
	    {"type": "Control", "label": "fields.name", "scope": "#/properties/name", "options": {"multi": true}},
	    {"type": "Group", "label": "groups.meta", "elements": [
	      {"type": "Control", "scope": "#/properties/status"}
	    ]}
	  ]
	}`))
	if err != nil {
		t.Fatalf("ParseUINode: %v", err)
	}
	before, _ := json.Marshal(ui)

	tr := dictionary(map[string]string{
		"fields.name":       "Name",
		"groups.meta":       "Metadata",
		"#/properties/name": "must not be used",
		"VerticalLayout":    "must not be used",
	})
	out := localize.TranslateUISchema(ui, tr)

	after, _ := json.Marshal(ui)
	if string(before) != string(after) {
		t.Fatalf("input mutated:\n%s\n%s", before, after)
	}

	root := out.(*schema.Layout)
	control := root.Elements[0].(*schema.Control)
	if control.Label != "Name" || control.Scope != "#/properties/name" || control.Options["multi"] != true {
		t.Fatalf("unexpected control: %#v", control.UIBase)
	}
	if root.Type != "VerticalLayout" {
		t.Fatalf("type rewritten: %q", root.Type)
	}
	group := root.Elements[1].(*schema.Group)
	if group.Label != "Metadata" {
		t.Fatalf("group label = %q", group.Label)
	}
	if inner := group.Elements[0].(*schema.Control); inner.Label != "" {
		t.Fatalf("absent label should stay absent, got %q", inner.Label)
	}
	if localize.TranslateUISchema(nil, tr) != nil {
		t.Fatalf("nil ui schema should stay nil")
	}
}
