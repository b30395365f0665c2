package i18n

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// ErrMissingTranslation is returned when no language in the chain has the key.
var ErrMissingTranslation = errors.New("i18n: missing translation")

// Translator resolves a key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslateFunc is the single-language lookup handed to the localizer. It
// must return the key unchanged when no mapping exists.
type TranslateFunc func(key string) string

// Identity returns keys unchanged.
func Identity(key string) string { return key }

// Bundle is a language-keyed dictionary of UI strings. It is safe for
// concurrent use; the CLI and the record controller share one instance.
type Bundle struct {
	mu       sync.RWMutex
	base     string
	messages map[string]map[string]string
}

// NewBundle creates an empty bundle whose final fallback is base.
func NewBundle(base string) (*Bundle, error) {
	tag, err := parseTag(base)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		base:     tag,
		messages: make(map[string]map[string]string),
	}, nil
}

// MustNewBundle panics when base is not a valid language tag.
func MustNewBundle(base string) *Bundle {
	b, err := NewBundle(base)
	if err != nil {
		panic(err)
	}
	return b
}

// Base returns the fallback language.
func (b *Bundle) Base() string {
	return b.base
}

// Add merges messages for lang. Nested maps flatten into dotted keys so
// `status: {DRAFT: Draft}` becomes `status.DRAFT`.
func (b *Bundle) Add(lang string, messages map[string]any) error {
	tag, err := parseTag(lang)
	if err != nil {
		return err
	}
	flat := make(map[string]string, len(messages))
	flatten("", messages, flat)

	b.mu.Lock()
	defer b.mu.Unlock()
	dict := b.messages[tag]
	if dict == nil {
		dict = make(map[string]string, len(flat))
		b.messages[tag] = dict
	}
	for key, value := range flat {
		dict[key] = value
	}
	return nil
}

// AddStrings merges a flat dictionary for lang.
func (b *Bundle) AddStrings(lang string, messages map[string]string) error {
	converted := make(map[string]any, len(messages))
	for key, value := range messages {
		converted[key] = value
	}
	return b.Add(lang, converted)
}

// Languages lists the loaded languages, sorted.
func (b *Bundle) Languages() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.messages))
	for tag := range b.messages {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Translate implements Translator. args are applied with fmt.Sprintf when
// present.
func (b *Bundle) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingTranslation
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, tag := range b.chain(locale) {
		if msg, ok := b.messages[tag][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrMissingTranslation, key, locale)
}

// Func binds the bundle to one locale, returning the key on a miss.
func (b *Bundle) Func(locale string) TranslateFunc {
	if b == nil {
		return Identity
	}
	return func(key string) string {
		msg, err := b.Translate(locale, key)
		if err != nil {
			return key
		}
		return msg
	}
}

// chain lists the lookup order for locale without duplicates.
func (b *Bundle) chain(locale string) []string {
	out := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		add(tag.String())
		if base, conf := tag.Base(); conf != language.No {
			add(base.String())
		}
	}
	add(b.base)
	return out
}

// parseTag canonicalises raw ("de_ch" and "de-CH" both become "de-CH").
func parseTag(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("i18n: empty language tag")
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("i18n: invalid language %q: %w", raw, err)
	}
	return tag.String(), nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]any:
			flatten(full, typed, out)
		case map[any]any:
			converted := make(map[string]any, len(typed))
			for k, v := range typed {
				converted[fmt.Sprint(k)] = v
			}
			flatten(full, converted, out)
		case string:
			out[full] = typed
		case nil:
		default:
			out[full] = fmt.Sprint(typed)
		}
	}
}
