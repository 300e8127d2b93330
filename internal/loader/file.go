package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"itemqueue/internal/fileutil"
	"itemqueue/internal/item"
	"itemqueue/internal/logging"
)

// DefaultActiveTemplate is used when no template is configured or listed.
const DefaultActiveTemplate = "queue"

// FileConfig configures the json and csv backends.
type FileConfig struct {
	Dir string
	// ActiveTemplate names the template that backs the queue. Empty selects
	// the first template in sorted order, else DefaultActiveTemplate.
	ActiveTemplate string
	Schema         item.Template
	Logger         *slog.Logger
}

// fileCodec converts between a template file and its items.
type fileCodec struct {
	name   string
	ext    string
	decode func([]byte) ([]item.Item, error)
	encode func([]item.Item) ([]byte, error)
}

// File stores one template per file under a templates directory.
type File struct {
	cfg         FileConfig
	codec       fileCodec
	schema      schemaTracker
	logger      *slog.Logger
	active      string
	initialized bool
}

func newFile(cfg FileConfig, codec fileCodec) *File {
	return &File{
		cfg:    cfg,
		codec:  codec,
		schema: newSchemaTracker(cfg.Schema),
		logger: logging.NewComponentLogger(cfg.Logger, "loader").With(slog.String(logging.FieldBackend, codec.name)),
	}
}

func (f *File) Initialize(ctx context.Context) error {
	if f.initialized {
		return nil
	}
	if strings.TrimSpace(f.cfg.Dir) == "" {
		return newError("initialize", f.codec.name, ErrConfiguration, errors.New("templates directory is empty"))
	}
	if err := os.MkdirAll(f.cfg.Dir, 0o755); err != nil {
		return newError("initialize", f.cfg.Dir, ErrIO, err)
	}
	templates, err := f.listTemplates()
	if err != nil {
		return err
	}

	f.active = strings.TrimSpace(f.cfg.ActiveTemplate)
	switch {
	case f.active != "":
	case len(templates) > 0:
		f.active = templates[0]
	default:
		f.active = DefaultActiveTemplate
	}
	if _, ok := f.templatePath(f.active); !ok {
		return newError("initialize", f.active, ErrConfiguration, errors.New("invalid active template name"))
	}

	f.initialized = true
	f.logger.Info("file loader initialized",
		slog.String("dir", f.cfg.Dir),
		slog.String("active_template", f.active),
		slog.Int("templates", len(templates)),
	)
	return nil
}

func (f *File) ItemSchema() item.Template { return f.schema.schema() }

func (f *File) HasTemplate(ctx context.Context, templateID string) (bool, error) {
	if err := f.Initialize(ctx); err != nil {
		return false, err
	}
	path, ok := f.templatePath(templateID)
	if !ok {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, newError("check template", path, ErrIO, err)
	}
	return info.Mode().IsRegular(), nil
}

func (f *File) LoadTemplate(ctx context.Context, templateID string) ([]item.Item, error) {
	exists, err := f.HasTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newError("load template", templateID, ErrNotFound, nil)
	}
	path, _ := f.templatePath(templateID)
	items, err := f.read(path, false)
	if err != nil {
		return nil, err
	}
	f.schema.observe(items)
	f.logger.Debug("template loaded", slog.String(logging.FieldTemplateID, templateID), slog.Int("items", len(items)))
	return items, nil
}

func (f *File) Templates(ctx context.Context) ([]string, error) {
	if err := f.Initialize(ctx); err != nil {
		return nil, err
	}
	return f.listTemplates()
}

func (f *File) GetItems(ctx context.Context) ([]item.Item, error) {
	if err := f.Initialize(ctx); err != nil {
		return nil, err
	}
	return f.read(f.activePath(), true)
}

func (f *File) SaveItems(ctx context.Context, items []item.Item) error {
	if err := f.Initialize(ctx); err != nil {
		return err
	}
	return f.write(f.activePath(), items)
}

func (f *File) AddItemFront(ctx context.Context, it item.Item) error { return addFront(ctx, f, it) }

func (f *File) AddItemBack(ctx context.Context, it item.Item) error { return addBack(ctx, f, it) }

func (f *File) RemoveItemFront(ctx context.Context) (item.Item, bool, error) {
	return removeFront(ctx, f)
}

func (f *File) RemoveItemBack(ctx context.Context) (item.Item, bool, error) {
	return removeBack(ctx, f)
}

func (f *File) Close() error { return nil }

func (f *File) Backend() string { return f.codec.name }

// Location returns the active template file path.
func (f *File) Location() string {
	if !f.initialized {
		return f.cfg.Dir
	}
	return f.activePath()
}

func (f *File) mutate(ctx context.Context, op string, fn func([]item.Item) ([]item.Item, bool)) error {
	if err := f.Initialize(ctx); err != nil {
		return err
	}
	path := f.activePath()
	items, err := f.read(path, true)
	if err != nil {
		return err
	}
	next, changed := fn(items)
	if !changed {
		return nil
	}
	if err := f.write(path, next); err != nil {
		return err
	}
	f.logger.Debug("active template rewritten", slog.String(logging.FieldOperation, op), slog.Int("items", len(next)))
	return nil
}

// templatePath maps a template id to its file. Ids that would escape the
// templates directory are rejected.
func (f *File) templatePath(templateID string) (string, bool) {
	id := strings.TrimSpace(templateID)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", false
	}
	return filepath.Join(f.cfg.Dir, id+f.codec.ext), true
}

func (f *File) activePath() string {
	path, _ := f.templatePath(f.active)
	return path
}

func (f *File) listTemplates() ([]string, error) {
	stems, err := fileutil.ListStems(f.cfg.Dir, f.codec.ext)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, newError("list templates", f.cfg.Dir, ErrIO, err)
	}
	if stems == nil {
		stems = []string{}
	}
	return stems, nil
}

// read decodes path. A missing file reads as an empty list when allowMissing
// is set.
func (f *File) read(path string, allowMissing bool) ([]item.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			return []item.Item{}, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError("read", path, ErrNotFound, err)
		}
		return nil, newError("read", path, ErrIO, err)
	}
	items, err := f.codec.decode(data)
	if err != nil {
		return nil, newError("decode", path, ErrFormat, err)
	}
	return items, nil
}

func (f *File) write(path string, items []item.Item) error {
	data, err := f.codec.encode(items)
	if err != nil {
		return newError("encode", path, ErrFormat, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return newError("write", path, ErrIO, fmt.Errorf("%s: %w", f.codec.name, err))
	}
	return nil
}
