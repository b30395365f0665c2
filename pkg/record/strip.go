package record

import (
	"strconv"

	"github.com/goliatone/go-recordview/pkg/schema"
)

// partition splits errs into additionalProperties violations and the rest.
func partition(errs []schema.ValidationError) (extra, other []schema.ValidationError) {
	for _, e := range errs {
		if e.IsAdditionalProperty() {
			extra = append(extra, e)
			continue
		}
		other = append(other, e)
	}
	return extra, other
}

// extraFields lists the offending property names, qualified by their
// containing path, without duplicates.
func extraFields(extra []schema.ValidationError) []string {
	out := make([]string, 0, len(extra))
	seen := make(map[string]struct{}, len(extra))
	for _, e := range extra {
		name := e.AdditionalProperty()
		if name == "" {
			continue
		}
		segments := append(e.Path(), name)
		label := segments[0]
		for _, segment := range segments[1:] {
			label += "." + segment
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// stripExtra deletes every extra property from data in place. Paths that no
// longer resolve are skipped.
func stripExtra(data Document, extra []schema.ValidationError) {
	for _, e := range extra {
		name := e.AdditionalProperty()
		if name == "" {
			continue
		}
		if container, ok := resolveObject(data, e.Path()); ok {
			delete(container, name)
		}
	}
}

func resolveObject(root map[string]any, path []string) (map[string]any, bool) {
	var current any = root
	for _, segment := range path {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	object, ok := current.(map[string]any)
	return object, ok
}
