package loader

import (
	"context"

	"itemqueue/internal/item"
)

// mutator applies fn to the active content with read-all, splice, write-all.
// fn reports whether it changed the list; unchanged lists are not written.
type mutator interface {
	mutate(ctx context.Context, op string, fn func([]item.Item) ([]item.Item, bool)) error
}

func addFront(ctx context.Context, m mutator, it item.Item) error {
	return m.mutate(ctx, "add item front", func(items []item.Item) ([]item.Item, bool) {
		out := make([]item.Item, 0, len(items)+1)
		out = append(out, it.Clone())
		return append(out, items...), true
	})
}

func addBack(ctx context.Context, m mutator, it item.Item) error {
	return m.mutate(ctx, "add item back", func(items []item.Item) ([]item.Item, bool) {
		return append(items, it.Clone()), true
	})
}

func removeFront(ctx context.Context, m mutator) (item.Item, bool, error) {
	var (
		removed item.Item
		found   bool
	)
	err := m.mutate(ctx, "remove item front", func(items []item.Item) ([]item.Item, bool) {
		if len(items) == 0 {
			return items, false
		}
		removed, found = items[0], true
		return items[1:], true
	})
	if err != nil {
		return item.Item{}, false, err
	}
	return removed, found, nil
}

func removeBack(ctx context.Context, m mutator) (item.Item, bool, error) {
	var (
		removed item.Item
		found   bool
	)
	err := m.mutate(ctx, "remove item back", func(items []item.Item) ([]item.Item, bool) {
		if len(items) == 0 {
			return items, false
		}
		last := len(items) - 1
		removed, found = items[last], true
		return items[:last], true
	})
	if err != nil {
		return item.Item{}, false, err
	}
	return removed, found, nil
}
