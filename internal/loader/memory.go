package loader

import (
	"context"
	"errors"
	"log/slog"

	"itemqueue/internal/item"
	"itemqueue/internal/logging"
)

// MemoryConfig configures the in-process backend.
type MemoryConfig struct {
	// Put enables writes. The memory backend has no read-only form, so a
	// false value is rejected at construction.
	Put    bool
	Seed   []item.Item
	Schema item.Template
	Logger *slog.Logger
}

// Memory keeps the active content in process. Template ids are ignored.
type Memory struct {
	items       []item.Item
	schema      schemaTracker
	logger      *slog.Logger
	initialized bool
}

// NewMemory builds a memory loader.
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	if !cfg.Put {
		return nil, newError("create loader", "memory", ErrConfiguration, errors.New("memory backend requires put = true"))
	}
	return &Memory{
		items:  item.CloneAll(cfg.Seed),
		schema: newSchemaTracker(cfg.Schema),
		logger: logging.NewComponentLogger(cfg.Logger, "loader").With(slog.String(logging.FieldBackend, "memory")),
	}, nil
}

func (m *Memory) Initialize(context.Context) error {
	if m.initialized {
		return nil
	}
	m.initialized = true
	m.logger.Info("memory loader initialized", slog.Int("items", len(m.items)))
	return nil
}

func (m *Memory) ItemSchema() item.Template { return m.schema.schema() }

// HasTemplate always reports true.
func (m *Memory) HasTemplate(context.Context, string) (bool, error) { return true, nil }

// LoadTemplate resets the active list to empty for every id and returns it.
func (m *Memory) LoadTemplate(context.Context, string) ([]item.Item, error) {
	m.items = []item.Item{}
	return []item.Item{}, nil
}

func (m *Memory) Templates(context.Context) ([]string, error) { return []string{}, nil }

func (m *Memory) GetItems(context.Context) ([]item.Item, error) {
	return item.CloneAll(m.items), nil
}

func (m *Memory) SaveItems(_ context.Context, items []item.Item) error {
	m.items = item.CloneAll(items)
	return nil
}

func (m *Memory) AddItemFront(ctx context.Context, it item.Item) error { return addFront(ctx, m, it) }

func (m *Memory) AddItemBack(ctx context.Context, it item.Item) error { return addBack(ctx, m, it) }

func (m *Memory) RemoveItemFront(ctx context.Context) (item.Item, bool, error) {
	return removeFront(ctx, m)
}

func (m *Memory) RemoveItemBack(ctx context.Context) (item.Item, bool, error) {
	return removeBack(ctx, m)
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Backend() string { return "memory" }

func (m *Memory) Location() string { return "in-process" }

func (m *Memory) mutate(_ context.Context, _ string, fn func([]item.Item) ([]item.Item, bool)) error {
	next, changed := fn(m.items)
	if changed {
		m.items = next
	}
	return nil
}
