package loader

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"itemqueue/internal/item"
	"itemqueue/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current database layout. Bump when schema.sql changes.
const schemaVersion = 1

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteConfig configures the embedded database backend.
type SQLiteConfig struct {
	Path string
	// ActiveTemplate names the template backing the queue. Empty selects
	// DefaultActiveTemplate.
	ActiveTemplate string
	Schema         item.Template
	Logger         *slog.Logger
}

// SQLite stores templates as ordered rows, one JSON body per item.
type SQLite struct {
	cfg         SQLiteConfig
	db          *sql.DB
	schema      schemaTracker
	logger      *slog.Logger
	active      string
	initialized bool
}

// NewSQLite builds a database loader. The database is opened at Initialize.
func NewSQLite(cfg SQLiteConfig) *SQLite {
	active := strings.TrimSpace(cfg.ActiveTemplate)
	if active == "" {
		active = DefaultActiveTemplate
	}
	return &SQLite{
		cfg:    cfg,
		schema: newSchemaTracker(cfg.Schema),
		logger: logging.NewComponentLogger(cfg.Logger, "loader").With(slog.String(logging.FieldBackend, "sqlite")),
		active: active,
	}
}

func (s *SQLite) Initialize(ctx context.Context) error {
	if s.initialized {
		return nil
	}
	if strings.TrimSpace(s.cfg.Path) == "" {
		return newError("initialize", "sqlite", ErrConfiguration, errors.New("database path is empty"))
	}
	if dir := filepath.Dir(s.cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return newError("initialize", dir, ErrIO, err)
		}
	}

	db, err := sql.Open("sqlite", s.cfg.Path)
	if err != nil {
		return newError("open database", s.cfg.Path, ErrIO, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return newError("open database", s.cfg.Path, ErrIO, fmt.Errorf("apply pragma %q: %w", pragma, execErr))
		}
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return newError("open database", s.cfg.Path, ErrFormat, err)
	}

	s.db = db
	s.initialized = true
	s.logger.Info("sqlite loader initialized",
		slog.String("path", s.cfg.Path),
		slog.String("active_template", s.active),
	)
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("database has schema version %d, expected %d", version, schemaVersion)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *SQLite) ItemSchema() item.Template { return s.schema.schema() }

func (s *SQLite) HasTemplate(ctx context.Context, templateID string) (bool, error) {
	if err := s.Initialize(ctx); err != nil {
		return false, err
	}
	var count int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM templates WHERE name = ?", templateID).Scan(&count)
	})
	if err != nil {
		return false, newError("check template", templateID, ErrIO, err)
	}
	return count > 0, nil
}

func (s *SQLite) LoadTemplate(ctx context.Context, templateID string) ([]item.Item, error) {
	exists, err := s.HasTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newError("load template", templateID, ErrNotFound, nil)
	}
	items, err := readTemplate(ctx, s.db, templateID)
	if err != nil {
		return nil, err
	}
	s.schema.observe(items)
	s.logger.Debug("template loaded", slog.String(logging.FieldTemplateID, templateID), slog.Int("items", len(items)))
	return items, nil
}

func (s *SQLite) Templates(ctx context.Context) ([]string, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	var names []string
	err := retryOnBusy(ctx, func() error {
		names = names[:0]
		rows, err := s.db.QueryContext(ctx, "SELECT name FROM templates ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, newError("list templates", s.cfg.Path, ErrIO, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *SQLite) GetItems(ctx context.Context) ([]item.Item, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return readTemplate(ctx, s.db, s.active)
}

func (s *SQLite) SaveItems(ctx context.Context, items []item.Item) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return writeTemplate(ctx, tx, s.active, items)
	})
	if err != nil {
		return newError("save items", s.active, ErrIO, err)
	}
	return nil
}

func (s *SQLite) AddItemFront(ctx context.Context, it item.Item) error { return addFront(ctx, s, it) }

func (s *SQLite) AddItemBack(ctx context.Context, it item.Item) error { return addBack(ctx, s, it) }

func (s *SQLite) RemoveItemFront(ctx context.Context) (item.Item, bool, error) {
	return removeFront(ctx, s)
}

func (s *SQLite) RemoveItemBack(ctx context.Context) (item.Item, bool, error) {
	return removeBack(ctx, s)
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.initialized = false
	return err
}

func (s *SQLite) Backend() string { return "sqlite" }

// Location returns the database path and active template.
func (s *SQLite) Location() string {
	return s.cfg.Path + "#" + s.active
}

// mutate runs the read-splice-write cycle inside one transaction.
func (s *SQLite) mutate(ctx context.Context, op string, fn func([]item.Item) ([]item.Item, bool)) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	var written int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		items, err := readTemplate(ctx, tx, s.active)
		if err != nil {
			return err
		}
		next, changed := fn(items)
		if !changed {
			written = -1
			return nil
		}
		written = len(next)
		return writeTemplate(ctx, tx, s.active, next)
	})
	if err != nil {
		return newError(op, s.active, ErrIO, err)
	}
	if written >= 0 {
		s.logger.Debug("active template rewritten", slog.String(logging.FieldOperation, op), slog.Int("items", written))
	}
	return nil
}

func (s *SQLite) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readTemplate(ctx context.Context, q queryer, templateID string) ([]item.Item, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT body FROM template_items WHERE template = ? ORDER BY position", templateID)
	if err != nil {
		return nil, newError("read template", templateID, ErrIO, err)
	}
	defer rows.Close()

	items := []item.Item{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, newError("read template", templateID, ErrIO, err)
		}
		var it item.Item
		if err := it.UnmarshalJSON([]byte(body)); err != nil {
			return nil, newError("decode item", fmt.Sprintf("%s[%d]", templateID, len(items)), ErrFormat, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, newError("read template", templateID, ErrIO, err)
	}
	return items, nil
}

func writeTemplate(ctx context.Context, tx *sql.Tx, templateID string, items []item.Item) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO templates (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		templateID, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM template_items WHERE template = ?", templateID); err != nil {
		return fmt.Errorf("clear template items: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO template_items (template, position, body) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for position, it := range items {
		body, err := it.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode item %d: %w", position, err)
		}
		if _, err := stmt.ExecContext(ctx, templateID, position, string(body)); err != nil {
			return fmt.Errorf("insert item %d: %w", position, err)
		}
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
