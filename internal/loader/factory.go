package loader

import (
	"errors"
	"fmt"
	"log/slog"

	"itemqueue/internal/config"
	"itemqueue/internal/item"
)

// New selects and constructs the loader named by cfg.Queue.Backend. The
// loader is not initialized.
func New(cfg *config.Config, logger *slog.Logger) (Loader, error) {
	if cfg == nil {
		return nil, newError("create loader", "", ErrConfiguration, errors.New("config is nil"))
	}
	schema := item.ParseTemplate(cfg.Queue.ItemTemplate)

	switch cfg.Queue.Backend {
	case config.BackendMemory:
		seed := make([]item.Item, 0, len(cfg.Memory.Items))
		for _, fields := range cfg.Memory.Items {
			seed = append(seed, item.Normalize(item.FromMap(fields)))
		}
		return NewMemory(MemoryConfig{
			Put:    cfg.Memory.Put,
			Seed:   seed,
			Schema: schema,
			Logger: logger,
		})
	case config.BackendJSON:
		return NewJSON(fileConfig(cfg, schema, logger)), nil
	case config.BackendCSV:
		return NewCSV(fileConfig(cfg, schema, logger)), nil
	case config.BackendSheets:
		return NewSheets(SheetsConfig{
			CredentialsPath: cfg.Sheets.CredentialsPath,
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			ActiveSheet:     cfg.Sheets.ActiveSheet,
			Schema:          schema,
			Logger:          logger,
		}), nil
	case config.BackendSQLite:
		return NewSQLite(SQLiteConfig{
			Path:           cfg.SQLite.Path,
			ActiveTemplate: cfg.SQLite.ActiveTemplate,
			Schema:         schema,
			Logger:         logger,
		}), nil
	default:
		return nil, newError("create loader", string(cfg.Queue.Backend), ErrConfiguration,
			fmt.Errorf("unknown backend %q", cfg.Queue.Backend))
	}
}

func fileConfig(cfg *config.Config, schema item.Template, logger *slog.Logger) FileConfig {
	return FileConfig{
		Dir:            cfg.Files.TemplatesDir,
		ActiveTemplate: cfg.Files.ActiveTemplate,
		Schema:         schema,
		Logger:         logger,
	}
}
