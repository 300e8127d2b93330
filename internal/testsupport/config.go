package testsupport

import (
	"path/filepath"
	"testing"

	"itemqueue/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to the json backend in passthrough mode and applies any
// provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Queue.Backend = config.BackendJSON
	cfgVal.Queue.Mode = config.ModePassthrough
	cfgVal.Files.TemplatesDir = filepath.Join(base, "templates")
	cfgVal.Sheets.CredentialsPath = filepath.Join(base, "credentials.json")
	cfgVal.SQLite.Path = filepath.Join(base, "itemqueue.db")
	cfgVal.Server.LockPath = filepath.Join(base, "itemqueue.lock")
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend selects the storage backend. The memory backend is also
// switched to put = true.
func WithBackend(backend config.Backend) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.Backend = backend
		if backend == config.BackendMemory {
			b.cfg.Memory.Put = true
		}
	}
}

// WithMode sets the queue operating mode.
func WithMode(mode config.Mode) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.Mode = mode
	}
}

// WithItemTemplate declares the item template as field/kind pairs.
func WithItemTemplate(fields map[string]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.ItemTemplate = fields
	}
}

// WithActiveTemplate pins the active template for the file and sqlite backends.
func WithActiveTemplate(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Files.ActiveTemplate = name
		b.cfg.SQLite.ActiveTemplate = name
	}
}

// WithMemoryItems seeds the memory backend.
func WithMemoryItems(items ...map[string]any) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Memory.Items = items
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Files.TemplatesDir)
}
