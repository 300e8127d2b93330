package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that take precedence over
// the configuration file. Empty values leave the file setting untouched.
type envOverrides struct {
	Backend           string `env:"ITEMQUEUE_BACKEND"`
	Mode              string `env:"ITEMQUEUE_MODE"`
	TemplatesDir      string `env:"ITEMQUEUE_TEMPLATES_DIR"`
	SheetsCredentials string `env:"ITEMQUEUE_SHEETS_CREDENTIALS"`
	SpreadsheetID     string `env:"ITEMQUEUE_SPREADSHEET_ID"`
	SQLitePath        string `env:"ITEMQUEUE_SQLITE_PATH"`
	LogLevel          string `env:"ITEMQUEUE_LOG_LEVEL"`
	LogFormat         string `env:"ITEMQUEUE_LOG_FORMAT"`
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	set := func(target *string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*target = value
		}
	}
	if value := strings.TrimSpace(overrides.Backend); value != "" {
		c.Queue.Backend = Backend(value)
	}
	if value := strings.TrimSpace(overrides.Mode); value != "" {
		c.Queue.Mode = Mode(value)
	}
	set(&c.Files.TemplatesDir, overrides.TemplatesDir)
	set(&c.Sheets.CredentialsPath, overrides.SheetsCredentials)
	set(&c.Sheets.SpreadsheetID, overrides.SpreadsheetID)
	set(&c.SQLite.Path, overrides.SQLitePath)
	set(&c.Logging.Level, overrides.LogLevel)
	set(&c.Logging.Format, overrides.LogFormat)
	return nil
}
