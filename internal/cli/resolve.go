package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ganot/sharedlist/internal/domain/item"
)

// minPrefix is the shortest id prefix accepted as an item reference.
const minPrefix = 4

var (
	// ErrNoSuchItem indicates no item matches a reference.
	ErrNoSuchItem = errors.New("no item matches")
	// ErrAmbiguousItem indicates a reference matches several items.
	ErrAmbiguousItem = errors.New("reference matches several items")
)

// resolveItem finds the item ref names: an exact id, a unique id prefix, or
// a unique name (case-insensitive).
func resolveItem(items []item.Item, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w %q", ErrNoSuchItem, ref)
	}
	for _, it := range items {
		if it.ID == ref {
			return it.ID, nil
		}
	}

	if len(ref) >= minPrefix {
		if id, err := unique(items, ref, func(it item.Item) bool { return strings.HasPrefix(it.ID, ref) }); err == nil || errors.Is(err, ErrAmbiguousItem) {
			return id, err
		}
	}

	name := item.NormalizeName(ref)
	return unique(items, ref, func(it item.Item) bool { return strings.EqualFold(it.Name, name) })
}

func unique(items []item.Item, ref string, match func(item.Item) bool) (string, error) {
	var found []string
	for _, it := range items {
		if match(it) {
			found = append(found, it.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w %q", ErrNoSuchItem, ref)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w %q: %s", ErrAmbiguousItem, ref, strings.Join(found, ", "))
	}
}
