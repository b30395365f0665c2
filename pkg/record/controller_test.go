package record_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordview/pkg/i18n"
	"github.com/goliatone/go-recordview/pkg/record"
	"github.com/goliatone/go-recordview/pkg/schema"
)

type persistCall struct {
	Op      record.Op
	ID      any
	Payload record.Document
}

type recorder struct {
	calls []persistCall
	err   error
}

func (r *recorder) Persist(_ context.Context, op record.Op, id any, payload record.Document) (record.Document, error) {
	r.calls = append(r.calls, persistCall{Op: op, ID: id, Payload: payload})
	if r.err != nil {
		return nil, r.err
	}
	return payload, nil
}

type bodyError struct {
	body string
}

func (e bodyError) Error() string        { return "status 422" }
func (e bodyError) ResponseBody() []byte { return []byte(e.body) }

func extraError(path, name string) schema.ValidationError {
	return schema.ValidationError{
		Keyword:      schema.KeywordAdditionalProperties,
		InstancePath: path,
		Params:       map[string]any{"additionalProperty": name},
		Message:      "must NOT have additional properties",
	}
}

func requiredError(name string) schema.ValidationError {
	return schema.ValidationError{
		Keyword: "required",
		Params:  map[string]any{"missingProperty": name},
		Message: "must have required property '" + name + "'",
	}
}

func TestNew_InitialMode(t *testing.T) {
	tests := []struct {
		name     string
		doc      record.Document
		readOnly bool
		want     record.Mode
	}{
		{"new record edits", record.Document{"name": "A"}, false, record.ModeEditing},
		{"stored record views", record.Document{"id": "r1"}, false, record.ModeViewing},
		{"empty id is new", record.Document{"id": ""}, false, record.ModeEditing},
		{"read-only new record views", record.Document{}, true, record.ModeViewing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := record.New(tt.doc, record.WithReadOnly(tt.readOnly))
			if got := c.Mode(); got != tt.want {
				t.Fatalf("Mode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdit_RequiresPermission(t *testing.T) {
	denied := record.New(record.Document{"id": "r1"}, record.WithPermission(func(record.Document) bool { return false }))
	if err := denied.Edit(); !errors.Is(err, record.ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}
	if denied.Mode() != record.ModeViewing {
		t.Fatalf("denied edit changed mode")
	}

	var seen record.Document
	allowed := record.New(record.Document{"id": "r1", "owner": "me"}, record.WithPermission(func(doc record.Document) bool {
		seen = doc
		return doc["owner"] == "me"
	}))
	if err := allowed.Edit(); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if allowed.Mode() != record.ModeEditing || seen["id"] != "r1" {
		t.Fatalf("unexpected state: mode=%v seen=%v", allowed.Mode(), seen)
	}

	readOnly := record.New(record.Document{"id": "r1"}, record.WithReadOnly(true))
	if err := readOnly.Edit(); !errors.Is(err, record.ErrNotPermitted) {
		t.Fatalf("expected read-only edit to be refused, got %v", err)
	}
}

func TestSave_CreateStripsConfirmedExtraField(t *testing.T) {
	p := &recorder{}
	c := record.New(record.Document{}, record.WithPersister(p))
	c.Change(record.Document{"name": "Ada", "status": "DRAFT", "legacy": true}, []schema.ValidationError{extraError("", "legacy")})

	outcome, err := c.Save(context.Background(), record.SaveOptions{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if outcome.Kind != record.OutcomeNeedsConfirmation {
		t.Fatalf("expected confirmation request, got %v", outcome.Kind)
	}
	if diff := cmp.Diff([]string{"legacy"}, outcome.Fields); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
	if len(p.calls) != 0 || c.Working()["legacy"] != true || c.Mode() != record.ModeEditing {
		t.Fatalf("declined confirmation must not change state")
	}

	outcome, err = c.Save(context.Background(), record.SaveOptions{ConfirmRemoval: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if outcome.Kind != record.OutcomeSaved {
		t.Fatalf("expected saved, got %v: %v", outcome.Kind, outcome.Messages)
	}
	want := []persistCall{{Op: record.OpCreate, ID: nil, Payload: record.Document{"name": "Ada", "status": "DRAFT"}}}
	if diff := cmp.Diff(want, p.calls); diff != "" {
		t.Fatalf("unexpected persist calls (-want +got):\n%s", diff)
	}
	if c.Mode() != record.ModeViewing {
		t.Fatalf("expected viewing after save, got %v", c.Mode())
	}
	if diff := cmp.Diff(record.Document{"name": "Ada", "status": "DRAFT"}, c.Baseline()); diff != "" {
		t.Fatalf("working copy not adopted as baseline (-want +got):\n%s", diff)
	}
}

func TestSave_StripsNestedExtraFields(t *testing.T) {
	p := &recorder{}
	c := record.New(record.Document{}, record.WithPersister(p))
	c.Change(record.Document{
		"name":    "Ada",
		"address": map[string]any{"city": "London", "zip": "N1"},
		"items":   []any{map[string]any{"sku": "a", "tmp": 1}},
	}, []schema.ValidationError{
		extraError("/address", "zip"),
		extraError("/items/0", "tmp"),
		extraError("/missing", "gone"),
	})

	outcome, _ := c.Save(context.Background(), record.SaveOptions{})
	if diff := cmp.Diff([]string{"address.zip", "items.0.tmp", "missing.gone"}, outcome.Fields); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}

	if _, err := c.Save(context.Background(), record.SaveOptions{ConfirmRemoval: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := record.Document{
		"name":    "Ada",
		"address": map[string]any{"city": "London"},
		"items":   []any{map[string]any{"sku": "a"}},
	}
	if diff := cmp.Diff(want, p.calls[0].Payload); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestSave_StripThenBlockRequiresFreshSave(t *testing.T) {
	p := &recorder{}
	c := record.New(record.Document{}, record.WithPersister(p))
	c.Change(record.Document{"legacy": 1}, []schema.ValidationError{extraError("", "legacy"), requiredError("name")})

	outcome, err := c.Save(context.Background(), record.SaveOptions{ConfirmRemoval: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if outcome.Kind != record.OutcomeBlocked {
		t.Fatalf("expected blocked, got %v", outcome.Kind)
	}
	if !strings.Contains(outcome.Message(), "must have required property 'name'") {
		t.Fatalf("remaining errors not presented: %q", outcome.Message())
	}
	if _, ok := c.Working()["legacy"]; ok {
		t.Fatalf("extra field should be stripped from the working copy")
	}
	if len(c.Errors()) != 1 || c.Mode() != record.ModeEditing || len(p.calls) != 0 {
		t.Fatalf("unexpected state after blocked save")
	}
}

func TestSave_BlockedByClientErrors(t *testing.T) {
	p := &recorder{}
	c := record.New(record.Document{}, record.WithPersister(p))
	c.Change(record.Document{"age": -1}, []schema.ValidationError{
		requiredError("name"),
		{Keyword: "minimum", InstancePath: "/age", Message: "must be >= 0"},
	})

	outcome, _ := c.Save(context.Background(), record.SaveOptions{})
	want := []string{
		"Please fix the highlighted fields.",
		"must have required property 'name'",
		"age: must be >= 0",
	}
	if outcome.Kind != record.OutcomeBlocked {
		t.Fatalf("expected blocked, got %v", outcome.Kind)
	}
	if diff := cmp.Diff(want, outcome.Messages); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
	if len(p.calls) != 0 || c.Mode() != record.ModeEditing {
		t.Fatalf("blocked save must not persist or leave edit mode")
	}
}

func TestSave_UnchangedUpdateSkipsPersist(t *testing.T) {
	p := &recorder{}
	doc := record.Document{"id": "r1", "name": "A", "meta": map[string]any{"n": 1.0}}
	c := record.New(doc, record.WithPersister(p))
	if err := c.Edit(); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	c.Change(record.Document{"id": "r1", "name": "A", "meta": map[string]any{"n": 1}}, nil)

	outcome, err := c.Save(context.Background(), record.SaveOptions{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if outcome.Kind != record.OutcomeUnchanged || !outcome.Ok() {
		t.Fatalf("expected unchanged, got %v", outcome.Kind)
	}
	if len(p.calls) != 0 {
		t.Fatalf("persist must not be invoked, got %#v", p.calls)
	}
	if c.Mode() != record.ModeViewing {
		t.Fatalf("expected viewing, got %v", c.Mode())
	}
}

func TestSave_UpdateSendsChangeSet(t *testing.T) {
	p := &recorder{}
	c := record.New(record.Document{"id": "r1", "name": "A", "status": "DRAFT"}, record.WithPersister(p))
	_ = c.Edit()
	c.Change(record.Document{"id": "r1", "name": "A", "status": "APPROVED"}, nil)

	outcome, _ := c.Save(context.Background(), record.SaveOptions{})
	if outcome.Kind != record.OutcomeSaved {
		t.Fatalf("expected saved, got %v", outcome.Kind)
	}
	want := []persistCall{{Op: record.OpUpdate, ID: "r1", Payload: record.Document{"status": "APPROVED"}}}
	if diff := cmp.Diff(want, p.calls); diff != "" {
		t.Fatalf("unexpected persist calls (-want +got):\n%s", diff)
	}
	if c.Baseline()["status"] != "APPROVED" {
		t.Fatalf("baseline not updated")
	}
}

func TestSave_ServerFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind record.OutcomeKind
		want []string
	}{
		{
			name: "structured list",
			err:  bodyError{`{"error":[{"path":["name"],"message":"required"},{"path":["name"],"message":"required"}]}`},
			kind: record.OutcomeRejected,
			want: []string{"name: required"},
		},
		{
			name: "single message",
			err:  bodyError{`{"error":"<b>Duplicate</b> title"}`},
			kind: record.OutcomeRejected,
			want: []string{"Duplicate title"},
		},
		{
			name: "unstructured body",
			err:  bodyError{`<html>Bad Gateway</html>`},
			kind: record.OutcomeFailed,
			want: []string{"Saving failed. Please try again."},
		},
		{
			name: "network error",
			err:  errors.New("connection refused"),
			kind: record.OutcomeFailed,
			want: []string{"Saving failed. Please try again."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recorder{err: tt.err}
			c := record.New(record.Document{"id": "r1", "name": "A"}, record.WithPersister(p))
			_ = c.Edit()
			c.Change(record.Document{"id": "r1", "name": ""}, nil)

			outcome, err := c.Save(context.Background(), record.SaveOptions{})
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if outcome.Kind != tt.kind {
				t.Fatalf("expected %v, got %v", tt.kind, outcome.Kind)
			}
			if diff := cmp.Diff(tt.want, outcome.Messages); diff != "" {
				t.Fatalf("unexpected messages (-want +got):\n%s", diff)
			}
			if c.Mode() != record.ModeEditing {
				t.Fatalf("failed save must stay in edit mode")
			}
			if c.Working()["name"] != "" {
				t.Fatalf("edits lost after failed save")
			}
			if !errors.Is(outcome.Err, tt.err) {
				t.Fatalf("outcome should carry the persister error")
			}
		})
	}
}

func TestSave_Misuse(t *testing.T) {
	viewing := record.New(record.Document{"id": "r1"}, record.WithPersister(&recorder{}))
	if _, err := viewing.Save(context.Background(), record.SaveOptions{}); !errors.Is(err, record.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	noPersister := record.New(record.Document{})
	if _, err := noPersister.Save(context.Background(), record.SaveOptions{}); !errors.Is(err, record.ErrNoPersister) {
		t.Fatalf("expected ErrNoPersister, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	stored := record.New(record.Document{"id": "r1", "name": "A"})
	_ = stored.Edit()
	stored.Change(record.Document{"id": "r1", "name": "B"}, []schema.ValidationError{requiredError("x")})

	if res := stored.Cancel(); res.Dismissed {
		t.Fatalf("stored record must not be dismissed")
	}
	if stored.Mode() != record.ModeViewing || stored.Working()["name"] != "A" || len(stored.Errors()) != 0 {
		t.Fatalf("cancel did not restore the baseline")
	}

	dismissed := 0
	fresh := record.New(record.Document{}, record.WithDismiss(func() { dismissed++ }))
	fresh.Change(record.Document{"name": "draft"}, nil)
	if res := fresh.Cancel(); !res.Dismissed {
		t.Fatalf("new record should be dismissed")
	}
	if dismissed != 1 || fresh.Mode() != record.ModeEditing || len(fresh.Working()) != 0 {
		t.Fatalf("unexpected state after dismiss: calls=%d mode=%v", dismissed, fresh.Mode())
	}
}

func TestChange_IgnoredWhileViewing(t *testing.T) {
	c := record.New(record.Document{"id": "r1", "name": "A"})
	c.Change(record.Document{"id": "r1", "name": "B"}, nil)
	if c.Working()["name"] != "A" {
		t.Fatalf("viewing controller accepted a change")
	}
}

func TestSetRecord_DiscardsEdits(t *testing.T) {
	c := record.New(record.Document{"id": "r1", "name": "A"})
	_ = c.Edit()
	c.Change(record.Document{"id": "r1", "name": "B"}, []schema.ValidationError{requiredError("x")})

	c.SetRecord(record.Document{"id": "r1", "name": "C"})
	if c.Working()["name"] != "C" || c.Baseline()["name"] != "C" || len(c.Errors()) != 0 {
		t.Fatalf("SetRecord must reset working copy and errors")
	}
}

func TestView_LocalizesPerLanguage(t *testing.T) {
	node, err := schema.ParseNode([]byte(`{"properties":{"status":{"title":"fields.status","enum":["DRAFT"]}}}`))
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	ui, err := schema.ParseUINode([]byte(`{"type":"VerticalLayout","elements":[{"type":"Control","label":"fields.status","scope":"#/properties/status"}]}`))
	if err != nil {
		t.Fatalf("ParseUINode: %v", err)
	}

	bundle := i18n.MustNewBundle("en")
	_ = bundle.Add("en", map[string]any{"fields": map[string]any{"status": "Status"}, "status": map[string]any{"DRAFT": "Draft"}})
	_ = bundle.Add("de", map[string]any{"fields": map[string]any{"status": "Zustand"}, "status": map[string]any{"DRAFT": "Entwurf"}})

	c := record.New(record.Document{"id": "r1", "status": "DRAFT"},
		record.WithSchema(node), record.WithUISchema(ui), record.WithBundle(bundle), record.WithLanguage("en"))

	view := c.View()
	if !view.ReadOnly || view.Mode != record.ModeViewing {
		t.Fatalf("stored record should render read-only")
	}
	status := view.Schema.Properties["status"]
	if status.Title != "Status" || status.Options()[0].Title != "Draft" {
		t.Fatalf("unexpected english view: %#v", status)
	}

	c.SetLanguage("de-AT")
	view = c.View()
	status = view.Schema.Properties["status"]
	if status.Title != "Zustand" || status.Options()[0].Title != "Entwurf" || status.Options()[0].Const != "DRAFT" {
		t.Fatalf("unexpected german view: %#v", status.Options())
	}
	if label := view.UISchema.(*schema.Layout).Elements[0].Common().Label; label != "Zustand" {
		t.Fatalf("unexpected label %q", label)
	}
	if node.Properties["status"].Title != "fields.status" {
		t.Fatalf("source schema mutated")
	}

	replacement, _ := schema.ParseNode([]byte(`{"title":"fields.status"}`))
	c.SetSchema(replacement, nil)
	if got := c.View().Schema.Title; got != "Zustand" {
		t.Fatalf("SetSchema must invalidate cached views, got %q", got)
	}
}

func TestText_UsesBundleOverrides(t *testing.T) {
	bundle := i18n.MustNewBundle("en")
	_ = bundle.AddStrings("de", map[string]string{record.MsgSaveFailed: "Speichern fehlgeschlagen."})

	c := record.New(record.Document{}, record.WithBundle(bundle), record.WithLanguage("de"),
		record.WithPersister(&recorder{err: errors.New("offline")}))
	outcome, _ := c.Save(context.Background(), record.SaveOptions{})
	if diff := cmp.Diff([]string{"Speichern fehlgeschlagen."}, outcome.Messages); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestController_InvalidateViewsPicksUpLateMessages(t *testing.T) {
	node, err := schema.ParseNode([]byte(`{"type":"object","title":"fields.owner"}`))
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	bundle := i18n.MustNewBundle("en")
	c := record.New(record.Document{"id": "r1"},
		record.WithSchema(node), record.WithBundle(bundle), record.WithLanguage("en"))

	if got := c.View().Schema.Title; got != "fields.owner" {
		t.Fatalf("expected raw key before messages load, got %q", got)
	}

	_ = bundle.AddStrings("en", map[string]string{"fields.owner": "Owner"})
	if got := c.View().Schema.Title; got != "fields.owner" {
		t.Fatalf("cached view should be reused until invalidated, got %q", got)
	}
	c.InvalidateViews()
	if got := c.View().Schema.Title; got != "Owner" {
		t.Fatalf("expected late message after InvalidateViews, got %q", got)
	}
}
