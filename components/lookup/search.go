package lookup

import (
	"fmt"
	"sort"
	"strings"
)

// Search returns the items whose label contains query, prefix matches first
// and then by label.
func Search(items []Item, query string, limit int, opts Options) []Item {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(items) <= limit {
				return append([]Item{}, items...)
			}
			return append([]Item{}, items[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedItem, 0, 32)
	for _, item := range items {
		label := strings.ToLower(labelOf(item, opts))
		if !strings.Contains(label, q) {
			continue
		}
		matches = append(matches, matchedItem{
			item:     item,
			label:    label,
			isPrefix: strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].label < matches[j].label
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Item, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.item)
	}
	return out
}

// Find returns the item whose value key renders as id.
func Find(items []Item, id string, opts Options) (Item, bool) {
	for _, item := range items {
		value, ok := item[opts.ValueKey]
		if ok && fmt.Sprint(value) == id {
			return item, true
		}
	}
	return nil, false
}

func labelOf(item Item, opts Options) string {
	if label, ok := item[opts.LabelKey]; ok && label != nil {
		return fmt.Sprint(label)
	}
	return ""
}

type matchedItem struct {
	item     Item
	label    string
	isPrefix bool
}
