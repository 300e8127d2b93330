package queue

import (
	"context"

	"itemqueue/internal/item"
	"itemqueue/internal/loader"
)

// sequenceStore is the mode-specific half of the Manager.
type sequenceStore interface {
	init(ctx context.Context) error
	getFront(ctx context.Context) (item.Item, bool, error)
	getBack(ctx context.Context) (item.Item, bool, error)
	pushFront(ctx context.Context, it item.Item) error
	pushBack(ctx context.Context, it item.Item) error
	replace(ctx context.Context, items []item.Item) error
	prepend(ctx context.Context, items []item.Item) error
	appendAll(ctx context.Context, items []item.Item) error
	snapshot(ctx context.Context) ([]item.Item, error)
}

// cachedStore works on a private copy read once from the loader.
type cachedStore struct {
	loader loader.Loader
	items  []item.Item
}

func (s *cachedStore) init(ctx context.Context) error {
	items, err := s.loader.GetItems(ctx)
	if err != nil {
		return err
	}
	s.items = item.CloneAll(items)
	return nil
}

func (s *cachedStore) getFront(context.Context) (item.Item, bool, error) {
	if len(s.items) == 0 {
		return item.Item{}, false, nil
	}
	front := s.items[0]
	s.items = s.items[1:]
	return front, true, nil
}

func (s *cachedStore) getBack(context.Context) (item.Item, bool, error) {
	if len(s.items) == 0 {
		return item.Item{}, false, nil
	}
	last := len(s.items) - 1
	back := s.items[last]
	s.items = s.items[:last]
	return back, true, nil
}

func (s *cachedStore) pushFront(ctx context.Context, it item.Item) error {
	return s.prepend(ctx, []item.Item{it})
}

func (s *cachedStore) pushBack(ctx context.Context, it item.Item) error {
	return s.appendAll(ctx, []item.Item{it})
}

func (s *cachedStore) replace(_ context.Context, items []item.Item) error {
	s.items = item.CloneAll(items)
	return nil
}

func (s *cachedStore) prepend(_ context.Context, items []item.Item) error {
	s.items = append(item.CloneAll(items), s.items...)
	return nil
}

func (s *cachedStore) appendAll(_ context.Context, items []item.Item) error {
	s.items = append(s.items, item.CloneAll(items)...)
	return nil
}

func (s *cachedStore) snapshot(context.Context) ([]item.Item, error) {
	return item.CloneAll(s.items), nil
}

// passthroughStore forwards every operation to the loader.
type passthroughStore struct {
	loader loader.Loader
}

func (s *passthroughStore) init(context.Context) error { return nil }

func (s *passthroughStore) getFront(ctx context.Context) (item.Item, bool, error) {
	return s.loader.RemoveItemFront(ctx)
}

func (s *passthroughStore) getBack(ctx context.Context) (item.Item, bool, error) {
	return s.loader.RemoveItemBack(ctx)
}

func (s *passthroughStore) pushFront(ctx context.Context, it item.Item) error {
	return s.loader.AddItemFront(ctx, it)
}

func (s *passthroughStore) pushBack(ctx context.Context, it item.Item) error {
	return s.loader.AddItemBack(ctx, it)
}

func (s *passthroughStore) replace(ctx context.Context, items []item.Item) error {
	return s.loader.SaveItems(ctx, items)
}

// prepend splices a block with read-all, splice, write-all.
func (s *passthroughStore) prepend(ctx context.Context, items []item.Item) error {
	current, err := s.loader.GetItems(ctx)
	if err != nil {
		return err
	}
	next := make([]item.Item, 0, len(items)+len(current))
	next = append(next, items...)
	return s.loader.SaveItems(ctx, append(next, current...))
}

func (s *passthroughStore) appendAll(ctx context.Context, items []item.Item) error {
	current, err := s.loader.GetItems(ctx)
	if err != nil {
		return err
	}
	return s.loader.SaveItems(ctx, append(current, items...))
}

func (s *passthroughStore) snapshot(ctx context.Context) ([]item.Item, error) {
	return s.loader.GetItems(ctx)
}
