package records

import "github.com/google/uuid"

type Record = map[string]any

type Options struct {
	RoutePath string
	IDField   string
	Required  []string
	Records   []Record
	NewID     func() string
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath: "/api/records",
		IDField:   "id",
		NewID:     func() string { return uuid.NewString() },
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.RoutePath == "" {
		opts.RoutePath = defaults.RoutePath
	}
	if opts.IDField == "" {
		opts.IDField = defaults.IDField
	}
	if opts.NewID == nil {
		opts.NewID = defaults.NewID
	}
	opts.Required = append([]string(nil), opts.Required...)
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		o.RoutePath = path
	}
}

// WithRequired lists fields every stored record must carry.
func WithRequired(fields ...string) OptionFn {
	return func(o *Options) {
		o.Required = append(o.Required, fields...)
	}
}

// WithRecords seeds the collection. Records without an id are skipped.
func WithRecords(records ...Record) OptionFn {
	return func(o *Options) {
		o.Records = append(o.Records, records...)
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) OptionFn {
	return func(o *Options) {
		o.NewID = fn
	}
}
