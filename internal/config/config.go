package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed sample_config.toml
var sampleConfig string

// Backend names a storage strategy for the queue.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendJSON   Backend = "json"
	BackendCSV    Backend = "csv"
	BackendSheets Backend = "sheets"
	BackendSQLite Backend = "sqlite"
)

// Mode selects how the queue relates to its backing store.
type Mode string

const (
	// ModeCached loads the store once and never writes back.
	ModeCached Mode = "cached"
	// ModePassthrough reads and writes the store on every operation.
	ModePassthrough Mode = "passthrough"
)

// Queue selects the backend, the operating mode, and an optional declared
// item template (field name to kind).
type Queue struct {
	Backend      Backend           `toml:"backend"`
	Mode         Mode              `toml:"mode"`
	ItemTemplate map[string]string `toml:"item_template"`
}

// Memory configures the in-process backend.
type Memory struct {
	// Put must be true; the memory backend refuses to start read-only.
	Put   bool             `toml:"put"`
	Items []map[string]any `toml:"items"`
}

// Files configures the json and csv backends.
type Files struct {
	TemplatesDir   string `toml:"templates_dir"`
	ActiveTemplate string `toml:"active_template"`
}

// Sheets configures the spreadsheet backend.
type Sheets struct {
	CredentialsPath string `toml:"credentials_path"`
	SpreadsheetID   string `toml:"spreadsheet_id"`
	ActiveSheet     string `toml:"active_sheet"`
}

// SQLite configures the embedded database backend.
type SQLite struct {
	Path           string `toml:"path"`
	ActiveTemplate string `toml:"active_template"`
}

// Server contains tool server identity and the single-instance lock.
type Server struct {
	Name     string `toml:"name"`
	LockPath string `toml:"lock_path"`
}

// Tool controls whether one tool is exposed and under which name.
type Tool struct {
	Enabled     bool   `toml:"enabled"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Tools configures the exposed tool set.
type Tools struct {
	Get  Tool `toml:"get"`
	Push Tool `toml:"push"`
	Load Tool `toml:"load"`
	List Tool `toml:"list"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for itemqueue.
//
// Configuration sections by subsystem:
//   - Queue: backend selection, operating mode, declared item template
//   - Memory: in-process backend switches and seed items
//   - Files: template directory for the json and csv backends
//   - Sheets: credentials and spreadsheet for the remote backend
//   - SQLite: database path for the embedded backend
//   - Server: tool server name and lock file
//   - Tools: per-tool exposure and naming
//   - Logging: log format, level, and directory
type Config struct {
	Queue   Queue   `toml:"queue"`
	Memory  Memory  `toml:"memory"`
	Files   Files   `toml:"files"`
	Sheets  Sheets  `toml:"sheets"`
	SQLite  SQLite  `toml:"sqlite"`
	Server  Server  `toml:"server"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`
}

// EnsureDirectories creates the directories the selected backend writes into.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	switch {
	case c.UsesFiles():
		dirs = append(dirs, c.Files.TemplatesDir)
	case c.Queue.Backend == BackendSQLite:
		dirs = append(dirs, filepath.Dir(c.SQLite.Path))
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	if strings.TrimSpace(c.Server.LockPath) != "" {
		dirs = append(dirs, filepath.Dir(c.Server.LockPath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// UsesFiles reports whether the selected backend stores templates as files.
func (c *Config) UsesFiles() bool {
	return c.Queue.Backend == BackendJSON || c.Queue.Backend == BackendCSV
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
