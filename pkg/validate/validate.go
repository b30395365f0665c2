// Package validate checks records against a schema and reports the errors in
// the shape a form renderer streams back: keyword, instancePath, params and
// message.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-recordview/pkg/schema"
)

const resourceURL = "file:///recordview/schema.json"

// Validator holds a compiled schema.
type Validator struct {
	compiled *jsonschema.Schema
	printer  *message.Printer
}

// Option configures a Validator.
type Option func(*Validator)

// WithLanguage selects the language of validator messages.
func WithLanguage(tag language.Tag) Option {
	return func(v *Validator) {
		v.printer = message.NewPrinter(tag)
	}
}

// New compiles node. Schemas default to draft-07 unless they declare $schema.
func New(node *schema.Node, opts ...Option) (*Validator, error) {
	if node == nil {
		return nil, errors.New("validate: schema is nil")
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("validate: encode schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate: decode schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("validate: add schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("validate: compile schema: %w", err)
	}

	v := &Validator{
		compiled: compiled,
		printer:  message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v, nil
}

// Validate returns every leaf violation in data, sorted by path and keyword.
// A nil slice means the record is valid.
func (v *Validator) Validate(data map[string]any) ([]schema.ValidationError, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("validate: encode record: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate: decode record: %w", err)
	}

	err = v.compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var out []schema.ValidationError
	v.collect(verr, &out)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].InstancePath != out[j].InstancePath {
			return out[i].InstancePath < out[j].InstancePath
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out, nil
}

func (v *Validator) collect(err *jsonschema.ValidationError, out *[]schema.ValidationError) {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			v.collect(cause, out)
		}
		return
	}

	path := schema.JoinPointer(err.InstanceLocation)
	switch k := err.ErrorKind.(type) {
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			*out = append(*out, schema.ValidationError{
				Keyword:      schema.KeywordAdditionalProperties,
				InstancePath: path,
				Params:       map[string]any{"additionalProperty": name},
				Message:      v.printer.Sprintf("must not have additional property %q", name),
			})
		}
	case *kind.Required:
		for _, name := range k.Missing {
			*out = append(*out, schema.ValidationError{
				Keyword:      "required",
				InstancePath: path,
				Params:       map[string]any{"missingProperty": name},
				Message:      v.printer.Sprintf("missing property %q", name),
			})
		}
	default:
		*out = append(*out, schema.ValidationError{
			Keyword:      keywordOf(err.ErrorKind),
			InstancePath: path,
			Params:       map[string]any{},
			Message:      err.ErrorKind.LocalizedString(v.printer),
		})
	}
}

func keywordOf(k jsonschema.ErrorKind) string {
	if k == nil {
		return ""
	}
	keywordPath := k.KeywordPath()
	if len(keywordPath) == 0 {
		return ""
	}
	return strings.TrimSpace(keywordPath[len(keywordPath)-1])
}
