package preflight

import (
	"context"
	"path/filepath"

	"itemqueue/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding backend is selected.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	switch cfg.Queue.Backend {
	case config.BackendMemory:
		results = append(results, CheckMemory(cfg.Memory))
	case config.BackendJSON, config.BackendCSV:
		results = append(results, CheckDirectoryAccess("Templates directory", cfg.Files.TemplatesDir))
	case config.BackendSheets:
		results = append(results, CheckCredentials(cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID))
	case config.BackendSQLite:
		results = append(results, CheckDirectoryAccess("Database directory", filepath.Dir(cfg.SQLite.Path)))
	}

	// Lock directory (always checked)
	results = append(results, CheckDirectoryAccess("Lock directory", filepath.Dir(cfg.Server.LockPath)))

	// Backend connectivity, only when the local checks passed
	if !AnyFailed(results) {
		results = append(results, CheckBackend(ctx, cfg))
	}

	return results
}

// AnyFailed reports whether at least one result did not pass.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
