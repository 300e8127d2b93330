package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks configuration that cannot be used to build a queue.
var ErrInvalid = errors.New("invalid configuration")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	return c.validateTools()
}

func (c *Config) validateQueue() error {
	switch c.Queue.Backend {
	case BackendMemory, BackendJSON, BackendCSV, BackendSheets, BackendSQLite:
	default:
		return fmt.Errorf("%w: queue.backend %q must be one of memory, json, csv, sheets, sqlite", ErrInvalid, c.Queue.Backend)
	}
	switch c.Queue.Mode {
	case ModeCached, ModePassthrough:
	default:
		return fmt.Errorf("%w: queue.mode %q must be cached or passthrough", ErrInvalid, c.Queue.Mode)
	}
	return nil
}

func (c *Config) validateBackend() error {
	switch c.Queue.Backend {
	case BackendMemory:
		if !c.Memory.Put {
			return fmt.Errorf("%w: memory backend requires memory.put = true", ErrInvalid)
		}
	case BackendJSON, BackendCSV:
		if strings.TrimSpace(c.Files.TemplatesDir) == "" {
			return fmt.Errorf("%w: files.templates_dir must be set", ErrInvalid)
		}
	case BackendSheets:
		if strings.TrimSpace(c.Sheets.CredentialsPath) == "" {
			return fmt.Errorf("%w: sheets.credentials_path must be set", ErrInvalid)
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return fmt.Errorf("%w: sqlite.path must be set", ErrInvalid)
		}
	}
	return nil
}

func (c *Config) validateTools() error {
	seen := make(map[string]string, 4)
	for _, entry := range []struct {
		key  string
		tool Tool
	}{
		{"tools.get", c.Tools.Get},
		{"tools.push", c.Tools.Push},
		{"tools.load", c.Tools.Load},
		{"tools.list", c.Tools.List},
	} {
		if !entry.tool.Enabled {
			continue
		}
		if other, exists := seen[entry.tool.Name]; exists {
			return fmt.Errorf("%w: %s.name %q already used by %s", ErrInvalid, entry.key, entry.tool.Name, other)
		}
		seen[entry.tool.Name] = entry.key
	}
	return nil
}
