package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeQueue()
	if err := c.normalizeFiles(); err != nil {
		return err
	}
	if err := c.normalizeSheets(); err != nil {
		return err
	}
	if err := c.normalizeSQLite(); err != nil {
		return err
	}
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeTools()
	return c.normalizeLogging()
}

func (c *Config) normalizeQueue() {
	c.Queue.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Queue.Backend))))
	if c.Queue.Backend == "" {
		c.Queue.Backend = defaultBackend
	}
	mode := strings.ToLower(strings.TrimSpace(string(c.Queue.Mode)))
	switch mode {
	case "":
		mode = string(defaultMode)
	case "pass-through", "pass_through":
		mode = string(ModePassthrough)
	}
	c.Queue.Mode = Mode(mode)

	if len(c.Queue.ItemTemplate) > 0 {
		fields := make(map[string]string, len(c.Queue.ItemTemplate))
		for name, kind := range c.Queue.ItemTemplate {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			fields[name] = strings.ToLower(strings.TrimSpace(kind))
		}
		c.Queue.ItemTemplate = fields
	}
}

func (c *Config) normalizeFiles() error {
	var err error
	if strings.TrimSpace(c.Files.TemplatesDir) == "" {
		c.Files.TemplatesDir = defaultTemplatesDir
	}
	if c.Files.TemplatesDir, err = expandPath(c.Files.TemplatesDir); err != nil {
		return fmt.Errorf("files.templates_dir: %w", err)
	}
	c.Files.ActiveTemplate = strings.TrimSpace(c.Files.ActiveTemplate)
	return nil
}

func (c *Config) normalizeSheets() error {
	var err error
	if strings.TrimSpace(c.Sheets.CredentialsPath) == "" {
		c.Sheets.CredentialsPath = defaultCredentialsPath
	}
	if c.Sheets.CredentialsPath, err = expandPath(c.Sheets.CredentialsPath); err != nil {
		return fmt.Errorf("sheets.credentials_path: %w", err)
	}
	c.Sheets.SpreadsheetID = strings.TrimSpace(c.Sheets.SpreadsheetID)
	c.Sheets.ActiveSheet = strings.TrimSpace(c.Sheets.ActiveSheet)
	return nil
}

func (c *Config) normalizeSQLite() error {
	var err error
	if strings.TrimSpace(c.SQLite.Path) == "" {
		c.SQLite.Path = defaultSQLitePath
	}
	if c.SQLite.Path, err = expandPath(c.SQLite.Path); err != nil {
		return fmt.Errorf("sqlite.path: %w", err)
	}
	c.SQLite.ActiveTemplate = strings.TrimSpace(c.SQLite.ActiveTemplate)
	if c.SQLite.ActiveTemplate == "" {
		c.SQLite.ActiveTemplate = defaultSQLiteTemplate
	}
	return nil
}

func (c *Config) normalizeServer() error {
	var err error
	c.Server.Name = strings.TrimSpace(c.Server.Name)
	if c.Server.Name == "" {
		c.Server.Name = defaultServerName
	}
	if strings.TrimSpace(c.Server.LockPath) == "" {
		c.Server.LockPath = defaultLockPath
	}
	if c.Server.LockPath, err = expandPath(c.Server.LockPath); err != nil {
		return fmt.Errorf("server.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	normalizeTool(&c.Tools.Get, defaultGetToolName)
	normalizeTool(&c.Tools.Push, defaultPushToolName)
	normalizeTool(&c.Tools.Load, defaultLoadToolName)
	normalizeTool(&c.Tools.List, defaultListToolName)
}

func normalizeTool(tool *Tool, fallback string) {
	tool.Name = strings.TrimSpace(tool.Name)
	if tool.Name == "" {
		tool.Name = fallback
	}
	tool.Description = strings.TrimSpace(tool.Description)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dir, err := expandPath(c.Logging.Dir)
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}
	return nil
}
