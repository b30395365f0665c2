package schema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordview/pkg/schema"
)

const petstore = `{
  "openapi": "3.0.3",
  "info": {"title": "Pets", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "title": "Pet",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "description": "pet.name", "maxLength": 64},
          "status": {"type": "string", "enum": ["available", "sold"]},
          "owner": {"$ref": "#/components/schemas/Owner"},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      },
      "Owner": {
        "type": "object",
        "properties": {"email": {"type": "string", "format": "email"}}
      }
    }
  }
}`

func TestFromOpenAPI(t *testing.T) {
	node, err := schema.FromOpenAPI(context.Background(), []byte(petstore), "Pet")
	if err != nil {
		t.Fatalf("FromOpenAPI: %v", err)
	}

	if node.Title != "Pet" || node.Type() != "object" {
		t.Fatalf("unexpected root: %#v", node)
	}
	if diff := cmp.Diff([]string{"name"}, node.Required()); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"available", "sold"}, node.Properties["status"].Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if node.Properties["name"].Description != "pet.name" {
		t.Fatalf("description lost: %#v", node.Properties["name"])
	}
	if ref := node.Properties["owner"].Extra["$ref"]; ref != "#/definitions/Owner" {
		t.Fatalf("component ref not rewritten: %v", ref)
	}
	if node.Properties["tags"].Items.Type() != "string" {
		t.Fatalf("items lost: %#v", node.Properties["tags"])
	}
	owner := node.Definitions["Owner"]
	if owner == nil || owner.Properties["email"].Extra["format"] != "email" {
		t.Fatalf("owner definition missing: %#v", node.Definitions)
	}
}

func TestFromOpenAPI_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := schema.FromOpenAPI(ctx, nil, "Pet"); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := schema.FromOpenAPI(ctx, []byte(petstore), ""); err == nil {
		t.Fatalf("expected error for empty component")
	}
	if _, err := schema.FromOpenAPI(ctx, []byte(petstore), "Missing"); err == nil {
		t.Fatalf("expected error for unknown component")
	}
}
