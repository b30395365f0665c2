// Package testsupport ships the article fixtures shared by package tests and
// golden-file helpers.
package testsupport

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordview/pkg/i18n"
	"github.com/goliatone/go-recordview/pkg/schema"
)

//go:embed testdata
var fixtures embed.FS

// Fixture names inside FS().
const (
	ArticleSchema   = "article.schema.json"
	ArticleUISchema = "article.uischema.yaml"
	ArticleRecord   = "article.record.json"
)

// FS exposes the fixtures rooted at testdata.
func FS() fs.FS {
	sub, err := fs.Sub(fixtures, "testdata")
	if err != nil {
		panic(err)
	}
	return sub
}

func loader() *schema.Loader {
	return schema.NewLoader(schema.WithFS(FS()))
}

// Schema loads the article schema.
func Schema(t *testing.T) *schema.Node {
	t.Helper()
	node, err := loader().LoadSchema(Context(), schema.FromFS(ArticleSchema))
	if err != nil {
		t.Fatalf("load schema fixture: %v", err)
	}
	return node
}

// UISchema loads the article UI schema.
func UISchema(t *testing.T) schema.UINode {
	t.Helper()
	ui, err := loader().LoadUISchema(Context(), schema.FromFS(ArticleUISchema))
	if err != nil {
		t.Fatalf("load ui schema fixture: %v", err)
	}
	return ui
}

// Record loads the stored article record.
func Record(t *testing.T) map[string]any {
	t.Helper()
	doc, err := loader().LoadRecord(Context(), schema.FromFS(ArticleRecord))
	if err != nil {
		t.Fatalf("load record fixture: %v", err)
	}
	return doc
}

// Bundle loads the en/de message bundle with English as base.
func Bundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	bundle := i18n.MustNewBundle("en")
	sub, err := fs.Sub(FS(), "i18n")
	if err != nil {
		t.Fatalf("i18n fixtures: %v", err)
	}
	if err := bundle.LoadFS(sub); err != nil {
		t.Fatalf("load bundle fixture: %v", err)
	}
	return bundle
}

// CopyTo writes the named fixtures into dir and returns their paths, for
// code that reads from disk.
func CopyTo(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	out := make([]string, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(FS(), name)
		if err != nil {
			t.Fatalf("read fixture %s: %v", name, err)
		}
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir fixture dir: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		out = append(out, path)
	}
	return out
}

// WriteJSON marshals value into dir/name and returns the path.
func WriteJSON(t *testing.T, dir, name string, value any) string {
	t.Helper()
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
