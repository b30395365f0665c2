// Package field implements remote-bound fields: a scalar identifier held in
// the record is resolved against a remote object for display, and a
// free-text query backs a debounced candidate list from the same endpoint.
//
// Every asynchronous result carries the generation it was dispatched with and
// is dropped when the field has moved on. Responses that complete out of
// issue order are still filtered by generation, so the latest issued request
// is the only one that can land.
package field

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/goliatone/go-recordview/internal/logging"
	"github.com/goliatone/go-recordview/pkg/remote"
)

var log = logging.Logger("recordview-field")

const (
	DefaultDebounce    = 300 * time.Millisecond
	DefaultSearchLimit = 20
)

// Binding points a field at its remote resource.
type Binding struct {
	APIURL   string
	LabelKey string
	ValueKey string
}

// Source performs the remote calls. *remote.Client satisfies it.
type Source interface {
	Lookup(ctx context.Context, apiURL, id string) (remote.Item, error)
	Search(ctx context.Context, apiURL, query string, limit int) ([]remote.Item, error)
}

// State is a snapshot for renderers.
type State struct {
	Value      any
	Resolved   remote.Item
	Query      string
	Candidates []remote.Item
	Loading    bool
	// Pending is set while a debounced search waits for its quiet period.
	Pending  bool
	Disabled bool
	Message  string
}

// Field is safe for concurrent use.
type Field struct {
	mu sync.Mutex

	source   Source
	binding  Binding
	clock    clock.Clock
	debounce time.Duration
	limit    int
	onChange func(value any)
	disabled bool
	message  string

	value      any
	resolved   remote.Item
	query      string
	candidates []remote.Item
	resolving  bool
	searching  bool

	resolveGen    uint64
	searchGen     uint64
	timer         *clock.Timer
	cancelResolve context.CancelFunc
	cancelSearch  context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// Option configures a Field.
type Option func(*Field)

// WithClock replaces the wall clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(f *Field) {
		if c != nil {
			f.clock = c
		}
	}
}

// WithDebounce sets the quiet period before a search is issued.
func WithDebounce(d time.Duration) Option {
	return func(f *Field) {
		if d >= 0 {
			f.debounce = d
		}
	}
}

// WithSearchLimit sets the limit sent with every search.
func WithSearchLimit(limit int) Option {
	return func(f *Field) {
		if limit > 0 {
			f.limit = limit
		}
	}
}

// WithOnChange receives the bound identifier whenever the user selects or
// clears a candidate.
func WithOnChange(fn func(value any)) Option {
	return func(f *Field) {
		f.onChange = fn
	}
}

// WithDisabled starts the field disabled.
func WithDisabled(disabled bool) Option {
	return func(f *Field) {
		f.disabled = disabled
	}
}

// New builds a field bound to binding. Call SetValue to load the initial
// identifier.
func New(source Source, binding Binding, opts ...Option) *Field {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Field{
		source:   source,
		binding:  normalizeBinding(binding),
		clock:    clock.New(),
		debounce: DefaultDebounce,
		limit:    DefaultSearchLimit,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// SetValue binds a new identifier. An empty identifier clears the resolved
// object at once; anything else starts a lookup.
func (f *Field) SetValue(value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if IDString(value) == IDString(f.value) && (f.resolved != nil || f.resolving) {
		f.value = value
		return
	}
	f.value = value
	f.resolveLocked()
}

// resolveLocked starts Flow A for the current value.
func (f *Field) resolveLocked() {
	f.resolveGen++
	if f.cancelResolve != nil {
		f.cancelResolve()
		f.cancelResolve = nil
	}

	id := IDString(f.value)
	if id == "" {
		f.resolved = nil
		f.resolving = false
		return
	}
	if f.resolved != nil && IDString(f.resolved[f.binding.ValueKey]) != id {
		f.resolved = nil
	}
	if f.source == nil {
		f.resolving = false
		return
	}

	ctx, cancel := context.WithCancel(f.ctx)
	f.cancelResolve = cancel
	f.resolving = true
	go f.runLookup(ctx, f.resolveGen, f.binding.APIURL, id)
}

func (f *Field) runLookup(ctx context.Context, gen uint64, apiURL, id string) {
	item, err := f.source.Lookup(ctx, apiURL, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.resolveGen {
		log.Debugw("stale lookup dropped", "url", apiURL, "id", id)
		return
	}
	f.resolving = false
	f.cancelResolve = nil
	if err != nil {
		log.Warnw("lookup failed", "url", apiURL, "id", id, "error", err)
		f.resolved = nil
		return
	}
	f.resolved = item
}

// SetQuery records the typed query and schedules a search after the quiet
// period. Clearing the query cancels any pending or running search.
// Surrounding whitespace is trimmed before the search is sent, so a query
// of only spaces counts as cleared.
func (f *Field) SetQuery(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.disabled {
		return
	}
	f.query = query
	f.scheduleSearchLocked()
}

func (f *Field) scheduleSearchLocked() {
	f.searchGen++
	f.stopSearchLocked()

	if strings.TrimSpace(f.query) == "" || f.source == nil {
		f.candidates = nil
		return
	}

	gen := f.searchGen
	f.timer = f.clock.AfterFunc(f.debounce, func() {
		f.dispatchSearch(gen)
	})
}

func (f *Field) stopSearchLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.cancelSearch != nil {
		f.cancelSearch()
		f.cancelSearch = nil
	}
	f.searching = false
}

func (f *Field) dispatchSearch(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.searchGen {
		return
	}
	f.timer = nil

	ctx, cancel := context.WithCancel(f.ctx)
	f.cancelSearch = cancel
	f.searching = true
	go f.runSearch(ctx, gen, f.binding.APIURL, strings.TrimSpace(f.query), f.limit)
}

func (f *Field) runSearch(ctx context.Context, gen uint64, apiURL, query string, limit int) {
	items, err := f.source.Search(ctx, apiURL, query, limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.searchGen {
		log.Debugw("stale search dropped", "url", apiURL, "query", query)
		return
	}
	f.searching = false
	f.cancelSearch = nil
	if err != nil {
		log.Warnw("search failed", "url", apiURL, "query", query, "error", err)
		f.candidates = []remote.Item{}
		return
	}
	if items == nil {
		items = []remote.Item{}
	}
	f.candidates = items
}

// Select binds candidate: the identifier becomes candidate[valueKey] and the
// resolved object becomes candidate itself.
func (f *Field) Select(candidate remote.Item) {
	f.mu.Lock()
	if f.closed || f.disabled {
		f.mu.Unlock()
		return
	}
	if candidate == nil {
		f.mu.Unlock()
		f.Clear()
		return
	}

	f.resolveGen++
	if f.cancelResolve != nil {
		f.cancelResolve()
		f.cancelResolve = nil
	}
	f.value = candidate[f.binding.ValueKey]
	f.resolved = candidate
	f.resolving = false
	value, onChange := f.value, f.onChange
	f.mu.Unlock()

	if onChange != nil {
		onChange(value)
	}
}

// Clear unbinds the identifier.
func (f *Field) Clear() {
	f.mu.Lock()
	if f.closed || f.disabled {
		f.mu.Unlock()
		return
	}
	f.value = nil
	f.resolveLocked()
	onChange := f.onChange
	f.mu.Unlock()

	if onChange != nil {
		onChange(nil)
	}
}

// IsSelected reports whether candidate is the bound object. Objects match by
// their value key, not by identity.
func (f *Field) IsSelected(candidate remote.Item) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if candidate == nil {
		return false
	}
	id := IDString(f.value)
	return id != "" && IDString(candidate[f.binding.ValueKey]) == id
}

// SetBinding points the field at another endpoint. Pending work against the
// old endpoint is cancelled; the current identifier and query are replayed
// against the new one.
func (f *Field) SetBinding(binding Binding) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.binding = normalizeBinding(binding)
	f.resolved = nil
	f.candidates = nil
	f.resolveLocked()
	if !f.disabled {
		f.scheduleSearchLocked()
	} else {
		f.searchGen++
		f.stopSearchLocked()
	}
}

// SetDisabled toggles interactivity. A disabled field ignores queries and
// selections.
func (f *Field) SetDisabled(disabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = disabled
	if disabled {
		f.searchGen++
		f.stopSearchLocked()
	}
}

// SetMessage sets the validation message rendered with the field.
func (f *Field) SetMessage(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = message
}

// Label renders item for display.
func (f *Field) Label(item remote.Item) string {
	f.mu.Lock()
	binding := f.binding
	f.mu.Unlock()
	if item == nil {
		return ""
	}
	if label, ok := item[binding.LabelKey]; ok && label != nil {
		return fmt.Sprint(label)
	}
	return IDString(item[binding.ValueKey])
}

// State returns a snapshot. With an empty query the candidate list holds
// just the resolved object so the current selection stays visible.
func (f *Field) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := State{
		Value:    f.value,
		Resolved: f.resolved,
		Query:    f.query,
		Loading:  f.resolving || f.searching,
		Pending:  f.timer != nil,
		Disabled: f.disabled,
		Message:  f.message,
	}
	switch {
	case strings.TrimSpace(f.query) == "":
		if f.resolved != nil {
			state.Candidates = []remote.Item{f.resolved}
		} else {
			state.Candidates = []remote.Item{}
		}
	case f.candidates != nil:
		state.Candidates = append([]remote.Item{}, f.candidates...)
	default:
		state.Candidates = []remote.Item{}
	}
	return state
}

// Close cancels timers and requests. Later calls are no-ops.
func (f *Field) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.resolveGen++
	f.searchGen++
	f.stopSearchLocked()
	if f.cancelResolve != nil {
		f.cancelResolve()
		f.cancelResolve = nil
	}
	f.resolving = false
	f.cancel()
}

// IDString renders an identifier for URLs and comparisons. Nil and blank
// strings render empty.
func IDString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

func normalizeBinding(b Binding) Binding {
	if b.ValueKey == "" {
		b.ValueKey = "id"
	}
	if b.LabelKey == "" {
		b.LabelKey = "name"
	}
	return b
}
