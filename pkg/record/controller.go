// Package record implements the record view controller: it owns the view's
// edit/view mode, keeps a working copy apart from the baseline, localizes
// the schema pair for display, and runs the save and cancel pipelines.
//
// The controller never blocks on user interaction. Decisions such as
// confirming the removal of undeclared fields are returned as an Outcome and
// fed back through SaveOptions on the next Save call.
//
// Save is not guarded against concurrent invocation; callers disable their
// save trigger while a save is in flight.
package record

import (
	"context"
	"sync"

	"github.com/goliatone/go-recordview/internal/logging"
	"github.com/goliatone/go-recordview/pkg/changeset"
	"github.com/goliatone/go-recordview/pkg/i18n"
	"github.com/goliatone/go-recordview/pkg/localize"
	"github.com/goliatone/go-recordview/pkg/schema"
)

var log = logging.Logger("recordview-record")

// Document is a record keyed by field name. The "id" key marks a stored
// record.
type Document = changeset.Document

// IDField is the reserved identifier key.
const IDField = "id"

// Mode is the controller state.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "viewing"
}

// View is everything the form renderer needs for one render.
type View struct {
	Schema   *schema.Node
	UISchema schema.UINode
	Data     Document
	ReadOnly bool
	Mode     Mode
}

type localized struct {
	schema *schema.Node
	ui     schema.UINode
}

// Controller drives one record view.
type Controller struct {
	mu sync.Mutex

	schema    *schema.Node
	ui        schema.UINode
	readOnly  bool
	canEdit   func(Document) bool
	persister Persister
	dismiss   func()
	bundle    *i18n.Bundle
	language  string

	baseline Document
	working  Document
	errors   []schema.ValidationError
	mode     Mode

	views map[string]localized
}

// Option configures a Controller.
type Option func(*Controller)

func WithSchema(node *schema.Node) Option {
	return func(c *Controller) {
		c.schema = node
	}
}

func WithUISchema(ui schema.UINode) Option {
	return func(c *Controller) {
		c.ui = ui
	}
}

// WithReadOnly disables editing altogether.
func WithReadOnly(readOnly bool) Option {
	return func(c *Controller) {
		c.readOnly = readOnly
	}
}

// WithPermission decides whether the record may be edited. Without it every
// record that is not read-only may be edited.
func WithPermission(fn func(Document) bool) Option {
	return func(c *Controller) {
		c.canEdit = fn
	}
}

func WithPersister(p Persister) Option {
	return func(c *Controller) {
		c.persister = p
	}
}

// WithDismiss is called when an unsaved new record is cancelled.
func WithDismiss(fn func()) Option {
	return func(c *Controller) {
		c.dismiss = fn
	}
}

func WithBundle(bundle *i18n.Bundle) Option {
	return func(c *Controller) {
		c.bundle = bundle
	}
}

func WithLanguage(lang string) Option {
	return func(c *Controller) {
		c.language = lang
	}
}

// New builds a controller around doc. New records start in edit mode unless
// the view is read-only.
func New(doc Document, opts ...Option) *Controller {
	c := &Controller{
		views: make(map[string]localized),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.reset(doc)
	if !hasID(c.baseline) && !c.readOnly {
		c.mode = ModeEditing
	}
	return c
}

func (c *Controller) reset(doc Document) {
	if doc == nil {
		doc = Document{}
	}
	c.baseline = changeset.Clone(doc)
	c.working = changeset.Clone(doc)
	c.errors = nil
}

// Mode returns the current state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsNew reports whether the baseline has no id.
func (c *Controller) IsNew() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !hasID(c.baseline)
}

// Baseline returns a copy of the last known persisted record.
func (c *Controller) Baseline() Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return changeset.Clone(c.baseline)
}

// Working returns a copy of the working copy.
func (c *Controller) Working() Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return changeset.Clone(c.working)
}

// Errors returns the validation errors last reported by the renderer.
func (c *Controller) Errors() []schema.ValidationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]schema.ValidationError(nil), c.errors...)
}

// SetRecord adopts a new baseline, discarding any in-progress edits.
func (c *Controller) SetRecord(doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(doc)
}

// SetSchema swaps the schema pair and drops cached localized views.
func (c *Controller) SetSchema(node *schema.Node, ui schema.UINode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schema = node
	c.ui = ui
	c.views = make(map[string]localized)
}

// InvalidateViews drops cached localized views. Call it after adding
// messages to the bundle once View has been used.
func (c *Controller) InvalidateViews() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = make(map[string]localized)
}

// SetLanguage switches the display language.
func (c *Controller) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
}

func (c *Controller) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// View returns the localized schema pair and the working copy. Localized
// trees are cached per language until SetSchema or InvalidateViews.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	trees, ok := c.views[c.language]
	if !ok {
		t := c.bundle.Func(c.language)
		trees = localized{
			schema: localize.TranslateSchema(c.schema, t),
			ui:     localize.TranslateUISchema(c.ui, t),
		}
		c.views[c.language] = trees
	}

	return View{
		Schema:   trees.schema,
		UISchema: trees.ui,
		Data:     changeset.Clone(c.working),
		ReadOnly: c.readOnly || c.mode == ModeViewing,
		Mode:     c.mode,
	}
}

// CanEdit reports whether Edit would succeed.
func (c *Controller) CanEdit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canEditLocked()
}

func (c *Controller) canEditLocked() bool {
	if c.readOnly {
		return false
	}
	if c.canEdit == nil {
		return true
	}
	return c.canEdit(changeset.Clone(c.baseline))
}

// Edit enters edit mode.
func (c *Controller) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeEditing {
		return nil
	}
	if !c.canEditLocked() {
		return ErrNotPermitted
	}
	c.mode = ModeEditing
	log.Debugw("mode changed", "mode", c.mode)
	return nil
}

// Change stores what the renderer reported after an edit. It is ignored
// outside edit mode.
func (c *Controller) Change(data Document, errs []schema.ValidationError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeEditing {
		return
	}
	if data == nil {
		data = Document{}
	}
	c.working = changeset.Clone(data)
	c.errors = append([]schema.ValidationError(nil), errs...)
}

// Save runs the save pipeline. The returned error is reserved for misuse;
// every user-facing result is an Outcome.
func (c *Controller) Save(ctx context.Context, opts SaveOptions) (Outcome, error) {
	c.mu.Lock()
	if c.mode != ModeEditing {
		c.mu.Unlock()
		return Outcome{}, ErrNotEditing
	}
	if c.persister == nil {
		c.mu.Unlock()
		return Outcome{}, ErrNoPersister
	}

	extra, other := partition(c.errors)
	if len(extra) > 0 {
		fields := extraFields(extra)
		if !opts.ConfirmRemoval {
			c.mu.Unlock()
			return Outcome{
				Kind:     OutcomeNeedsConfirmation,
				Fields:   fields,
				Messages: []string{c.text(MsgExtraFields)},
			}, nil
		}

		stripped := changeset.Clone(c.working)
		stripExtra(stripped, extra)
		c.working = stripped
		c.errors = other
		log.Debugw("removed undeclared fields", "fields", fields)

		if len(other) > 0 {
			outcome := c.blockedLocked(other)
			c.mu.Unlock()
			return outcome, nil
		}
	} else if len(other) > 0 {
		outcome := c.blockedLocked(other)
		c.mu.Unlock()
		return outcome, nil
	}

	op, id, payload := OpCreate, any(nil), changeset.Clone(c.working)
	if hasID(c.baseline) && !c.readOnly {
		op, id = OpUpdate, c.baseline[IDField]
		payload = changeset.DirtyValues(c.baseline, c.working)
		if len(payload) == 0 {
			c.mode = ModeViewing
			c.mu.Unlock()
			log.Debugw("nothing to save", "id", id)
			return Outcome{Kind: OutcomeUnchanged, Payload: payload}, nil
		}
	}
	persister := c.persister
	committed := changeset.Clone(c.working)
	c.mu.Unlock()

	saved, err := persister.Persist(ctx, op, id, changeset.Clone(payload))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Warnw("persist failed", "op", op, "id", id, "error", err)
		if messages, ok := ServerMessages(err); ok {
			return Outcome{Kind: OutcomeRejected, Messages: messages, Payload: payload, Err: err}, nil
		}
		return Outcome{Kind: OutcomeFailed, Messages: []string{c.text(MsgSaveFailed)}, Payload: payload, Err: err}, nil
	}

	c.baseline = committed
	c.working = changeset.Clone(committed)
	c.errors = nil
	c.mode = ModeViewing
	log.Debugw("saved", "op", op, "id", id)
	return Outcome{Kind: OutcomeSaved, Payload: payload, Record: saved}, nil
}

func (c *Controller) blockedLocked(errs []schema.ValidationError) Outcome {
	messages := append([]string{c.text(MsgValidationFailed)}, validationMessages(errs)...)
	return Outcome{Kind: OutcomeBlocked, Messages: messages}
}

// Cancel discards the working copy. Stored records return to view mode;
// an unsaved new record is dismissed instead.
func (c *Controller) Cancel() CancelResult {
	c.mu.Lock()
	c.working = changeset.Clone(c.baseline)
	c.errors = nil
	if hasID(c.baseline) {
		c.mode = ModeViewing
		c.mu.Unlock()
		return CancelResult{}
	}
	dismiss := c.dismiss
	c.mu.Unlock()

	if dismiss != nil {
		dismiss()
	}
	return CancelResult{Dismissed: true}
}

// text resolves a message key, falling back to the English default.
func (c *Controller) text(key string) string {
	if msg := c.bundle.Func(c.language)(key); msg != key {
		return msg
	}
	if msg, ok := defaultMessages[key]; ok {
		return msg
	}
	return key
}

func hasID(doc Document) bool {
	id, ok := doc[IDField]
	if !ok || id == nil {
		return false
	}
	if s, isString := id.(string); isString {
		return s != ""
	}
	return true
}
