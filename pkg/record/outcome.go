package record

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotEditing is returned by Save outside of edit mode.
	ErrNotEditing = errors.New("record: save requires edit mode")
	// ErrNoPersister is returned by Save when no persister is configured.
	ErrNoPersister = errors.New("record: no persister configured")
	// ErrNotPermitted is returned by Edit when the record may not be edited.
	ErrNotPermitted = errors.New("record: editing not permitted")
)

// Op tells the persister whether to create or update.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
)

// Persister stores a payload. For OpUpdate the payload is the change set and
// id is the record id; for OpCreate the payload is the whole record and id
// is nil. The returned record is informational only.
type Persister interface {
	Persist(ctx context.Context, op Op, id any, payload Document) (Document, error)
}

// PersistFunc adapts a function to Persister.
type PersistFunc func(ctx context.Context, op Op, id any, payload Document) (Document, error)

func (fn PersistFunc) Persist(ctx context.Context, op Op, id any, payload Document) (Document, error) {
	return fn(ctx, op, id, payload)
}

// OutcomeKind classifies the result of a save attempt.
type OutcomeKind int

const (
	// OutcomeSaved: the payload was persisted and the view is back in Viewing.
	OutcomeSaved OutcomeKind = iota
	// OutcomeUnchanged: nothing to persist; the view went straight to Viewing.
	OutcomeUnchanged
	// OutcomeNeedsConfirmation: Fields are not part of the schema. Save again
	// with ConfirmRemoval to strip them.
	OutcomeNeedsConfirmation
	// OutcomeBlocked: client-side validation errors remain.
	OutcomeBlocked
	// OutcomeRejected: the server reported structured errors.
	OutcomeRejected
	// OutcomeFailed: the save failed without a usable explanation.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSaved:
		return "saved"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeNeedsConfirmation:
		return "needs_confirmation"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what Save hands back to the caller to render.
type Outcome struct {
	Kind     OutcomeKind
	Fields   []string
	Messages []string
	// Payload is what was sent to the persister, if anything.
	Payload Document
	// Record is the persister's response on success.
	Record Document
	// Err is the persister error behind OutcomeRejected and OutcomeFailed.
	Err error
}

// Ok reports whether the view left edit mode.
func (o Outcome) Ok() bool {
	return o.Kind == OutcomeSaved || o.Kind == OutcomeUnchanged
}

// Message joins Messages one per line.
func (o Outcome) Message() string {
	return strings.Join(o.Messages, "\n")
}

// SaveOptions carries the caller's decisions for one save attempt.
type SaveOptions struct {
	// ConfirmRemoval strips properties the schema does not declare.
	ConfirmRemoval bool
}

// CancelResult reports what Cancel did.
type CancelResult struct {
	// Dismissed is set when an unsaved new record was discarded and the
	// dismiss callback ran.
	Dismissed bool
}
