package loader

import (
	"context"

	"itemqueue/internal/item"
)

// Loader is the storage contract shared by every backend.
type Loader interface {
	// Initialize prepares the store. It is idempotent and tolerates an empty
	// or missing store.
	Initialize(ctx context.Context) error
	// ItemSchema returns the configured item template, else the one inferred
	// from the first non-empty load, else nil.
	ItemSchema() item.Template
	HasTemplate(ctx context.Context, templateID string) (bool, error)
	// LoadTemplate reads the named template in full. It fails with
	// ErrNotFound when HasTemplate would report false.
	LoadTemplate(ctx context.Context, templateID string) ([]item.Item, error)
	// Templates lists the available template ids in sorted order.
	Templates(ctx context.Context) ([]string, error)
	// GetItems reads the active content.
	GetItems(ctx context.Context) ([]item.Item, error)
	// SaveItems replaces the active content.
	SaveItems(ctx context.Context, items []item.Item) error
	AddItemFront(ctx context.Context, it item.Item) error
	AddItemBack(ctx context.Context, it item.Item) error
	// RemoveItemFront removes and returns the first item. ok is false when
	// the active content is empty.
	RemoveItemFront(ctx context.Context) (it item.Item, ok bool, err error)
	RemoveItemBack(ctx context.Context) (it item.Item, ok bool, err error)
	Close() error
}

// Describer is implemented by loaders that can report where they store data.
type Describer interface {
	// Backend names the storage strategy.
	Backend() string
	// Location describes the active content, such as a file path or sheet.
	Location() string
}

// schemaTracker resolves the item template: configured wins, otherwise the
// first item of the first non-empty template load fixes it for the loader's lifetime.
type schemaTracker struct {
	configured item.Template
	inferred   item.Template
	observed   bool
}

func newSchemaTracker(configured item.Template) schemaTracker {
	return schemaTracker{configured: configured.Clone()}
}

func (s *schemaTracker) observe(items []item.Item) {
	if s.configured != nil || s.observed || len(items) == 0 {
		return
	}
	s.observed = true
	s.inferred = item.InferTemplate(items[0])
}

func (s *schemaTracker) schema() item.Template {
	if s.configured != nil {
		return s.configured.Clone()
	}
	return s.inferred.Clone()
}
