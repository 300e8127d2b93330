package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"itemqueue/internal/config"
	"itemqueue/internal/item"
	"itemqueue/internal/loader"
	"itemqueue/internal/logging"
)

// Options configures a Manager.
type Options struct {
	Mode config.Mode
	// Template overrides the loader's item schema when non-nil.
	Template item.Template
	Logger   *slog.Logger
}

// Manager serves queue operations over a loader in one operating mode.
type Manager struct {
	mu          sync.Mutex
	loader      loader.Loader
	mode        config.Mode
	store       sequenceStore
	template    item.Template
	logger      *slog.Logger
	initialized bool
}

// NewManager wraps l. The loader is initialized on first use.
func NewManager(l loader.Loader, opts Options) (*Manager, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: loader is nil", loader.ErrConfiguration)
	}
	mode := opts.Mode
	if mode == "" {
		mode = config.ModePassthrough
	}

	var store sequenceStore
	switch mode {
	case config.ModeCached:
		store = &cachedStore{loader: l}
	case config.ModePassthrough:
		store = &passthroughStore{loader: l}
	default:
		return nil, fmt.Errorf("%w: unknown queue mode %q", loader.ErrConfiguration, mode)
	}

	return &Manager{
		loader:   l,
		mode:     mode,
		store:    store,
		template: opts.Template.Clone(),
		logger:   logging.NewComponentLogger(opts.Logger, "queue").With(slog.String("mode", string(mode))),
	}, nil
}

// New builds the configured loader and a Manager over it.
func New(cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	l, err := loader.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewManager(l, Options{
		Mode:     cfg.Queue.Mode,
		Template: item.ParseTemplate(cfg.Queue.ItemTemplate),
		Logger:   logger,
	})
}

// Initialize prepares the loader and, in cached mode, reads the active
// content. It is idempotent; other methods call it as needed.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureInitialized(ctx)
}

func (m *Manager) ensureInitialized(ctx context.Context) error {
	if m.initialized {
		return nil
	}
	if err := m.loader.Initialize(ctx); err != nil {
		return err
	}
	if err := m.store.init(ctx); err != nil {
		return err
	}
	m.resolveTemplate()
	m.initialized = true

	attrs := []any{slog.Int("template_fields", len(m.template))}
	if d, ok := m.loader.(loader.Describer); ok {
		attrs = append(attrs, slog.String(logging.FieldBackend, d.Backend()), slog.String("location", d.Location()))
	}
	m.logger.Info("queue initialized", attrs...)
	return nil
}

// resolveTemplate fixes the item template the first time one is available.
func (m *Manager) resolveTemplate() {
	if m.template != nil {
		return
	}
	if schema := m.loader.ItemSchema(); schema != nil {
		m.template = schema
		m.logger.Debug("item template established", slog.Any("fields", schema.Fields()))
	}
}

// Mode reports the operating mode.
func (m *Manager) Mode() config.Mode { return m.mode }

// Template returns the current item template, or nil when none is known.
func (m *Manager) Template() item.Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolveTemplate()
	return m.template.Clone()
}

// Describe reports the loader's backend and location when it exposes them.
func (m *Manager) Describe() (backend, location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.loader.(loader.Describer); ok {
		return d.Backend(), d.Location()
	}
	return "", ""
}

// GetFront removes and returns the first item. ok is false for an empty queue.
func (m *Manager) GetFront(ctx context.Context) (it item.Item, ok bool, err error) {
	err = m.run(ctx, "get_front", func() error {
		it, ok, err = m.store.getFront(ctx)
		return err
	})
	return it, ok, err
}

// GetBack removes and returns the last item. ok is false for an empty queue.
func (m *Manager) GetBack(ctx context.Context) (it item.Item, ok bool, err error) {
	err = m.run(ctx, "get_back", func() error {
		it, ok, err = m.store.getBack(ctx)
		return err
	})
	return it, ok, err
}

// PushFront validates it and inserts it at the front.
func (m *Manager) PushFront(ctx context.Context, it item.Item) error {
	return m.run(ctx, "push_front", func() error {
		if err := m.validate(it); err != nil {
			return err
		}
		return m.store.pushFront(ctx, it)
	})
}

// PushBack validates it and inserts it at the back.
func (m *Manager) PushBack(ctx context.Context, it item.Item) error {
	return m.run(ctx, "push_back", func() error {
		if err := m.validate(it); err != nil {
			return err
		}
		return m.store.pushBack(ctx, it)
	})
}

// ReplaceFromTemplate makes the queue exactly the named template's content.
func (m *Manager) ReplaceFromTemplate(ctx context.Context, templateID string) (int, error) {
	var count int
	err := m.run(ctx, "replace_from_template", func() error {
		items, err := m.loadTemplate(ctx, templateID)
		if err != nil {
			return err
		}
		count = len(items)
		return m.store.replace(ctx, items)
	})
	return count, err
}

// AddFrontFromTemplate prepends the named template's items as one block,
// keeping their order.
func (m *Manager) AddFrontFromTemplate(ctx context.Context, templateID string) (int, error) {
	var count int
	err := m.run(ctx, "add_front_from_template", func() error {
		items, err := m.loadTemplate(ctx, templateID)
		if err != nil {
			return err
		}
		count = len(items)
		return m.store.prepend(ctx, items)
	})
	return count, err
}

// AddBackFromTemplate appends the named template's items as one block.
func (m *Manager) AddBackFromTemplate(ctx context.Context, templateID string) (int, error) {
	var count int
	err := m.run(ctx, "add_back_from_template", func() error {
		items, err := m.loadTemplate(ctx, templateID)
		if err != nil {
			return err
		}
		count = len(items)
		return m.store.appendAll(ctx, items)
	})
	return count, err
}

// Items returns the queue content without removing anything.
func (m *Manager) Items(ctx context.Context) ([]item.Item, error) {
	var items []item.Item
	err := m.run(ctx, "items", func() error {
		var err error
		items, err = m.store.snapshot(ctx)
		return err
	})
	return items, err
}

// Templates lists the template ids the loader can load.
func (m *Manager) Templates(ctx context.Context) ([]string, error) {
	var names []string
	err := m.run(ctx, "templates", func() error {
		var err error
		names, err = m.loader.Templates(ctx)
		return err
	})
	return names, err
}

// Close releases the loader.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loader.Close()
}

func (m *Manager) run(ctx context.Context, operation string, fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := logging.WithContext(logging.WithOperation(ctx, operation), m.logger)
	if err := m.ensureInitialized(ctx); err != nil {
		logger.Warn("queue initialization failed", logging.Error(err))
		return err
	}
	if err := fn(); err != nil {
		logger.Debug("queue operation failed", logging.Error(err), slog.String("error_kind", ErrorKind(err)))
		return err
	}
	logger.Debug("queue operation completed")
	return nil
}

func (m *Manager) validate(it item.Item) error {
	m.resolveTemplate()
	if problems := item.Check(it, m.template); len(problems) > 0 {
		return &SchemaError{Problems: problems}
	}
	return nil
}

func (m *Manager) loadTemplate(ctx context.Context, templateID string) ([]item.Item, error) {
	exists, err := m.loader.HasTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, templateNotFound(templateID)
	}
	items, err := m.loader.LoadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	m.resolveTemplate()
	return items, nil
}
