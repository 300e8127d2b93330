package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"itemqueue/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantTemplates := filepath.Join(tempHome, ".local", "share", "itemqueue", "templates")
	if cfg.Files.TemplatesDir != wantTemplates {
		t.Fatalf("unexpected templates dir: got %q want %q", cfg.Files.TemplatesDir, wantTemplates)
	}
	if cfg.Queue.Backend != config.BackendJSON {
		t.Fatalf("unexpected backend: %q", cfg.Queue.Backend)
	}
	if cfg.Queue.Mode != config.ModePassthrough {
		t.Fatalf("unexpected mode: %q", cfg.Queue.Mode)
	}
	if cfg.Tools.Get.Name != "get_item" || !cfg.Tools.Get.Enabled {
		t.Fatalf("unexpected get tool: %+v", cfg.Tools.Get)
	}
	if cfg.SQLite.ActiveTemplate != "queue" {
		t.Fatalf("unexpected sqlite template: %q", cfg.SQLite.ActiveTemplate)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Files.TemplatesDir); err != nil || !info.IsDir() {
		t.Fatalf("expected templates dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "itemqueue.toml")

	type payload struct {
		Queue struct {
			Backend      string            `toml:"backend"`
			Mode         string            `toml:"mode"`
			ItemTemplate map[string]string `toml:"item_template"`
		} `toml:"queue"`
		Files struct {
			TemplatesDir string `toml:"templates_dir"`
		} `toml:"files"`
		Tools struct {
			Push struct {
				Name string `toml:"name"`
			} `toml:"push"`
		} `toml:"tools"`
	}
	custom := payload{}
	custom.Queue.Backend = "CSV"
	custom.Queue.Mode = "pass-through"
	custom.Queue.ItemTemplate = map[string]string{"task": " String "}
	custom.Files.TemplatesDir = filepath.Join(tempDir, "tpl")
	custom.Tools.Push.Name = "enqueue"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Queue.Backend != config.BackendCSV {
		t.Fatalf("backend not normalized: %q", cfg.Queue.Backend)
	}
	if cfg.Queue.Mode != config.ModePassthrough {
		t.Fatalf("mode not normalized: %q", cfg.Queue.Mode)
	}
	if cfg.Queue.ItemTemplate["task"] != "string" {
		t.Fatalf("item template not normalized: %v", cfg.Queue.ItemTemplate)
	}
	if cfg.Files.TemplatesDir != custom.Files.TemplatesDir {
		t.Fatalf("templates dir = %q", cfg.Files.TemplatesDir)
	}
	if cfg.Tools.Push.Name != "enqueue" || !cfg.Tools.Push.Enabled {
		t.Fatalf("push tool = %+v", cfg.Tools.Push)
	}
	if cfg.Tools.Get.Name != "get_item" {
		t.Fatalf("get tool should keep default name, got %q", cfg.Tools.Get.Name)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "queue.db")
	t.Setenv("ITEMQUEUE_BACKEND", "sqlite")
	t.Setenv("ITEMQUEUE_MODE", "cached")
	t.Setenv("ITEMQUEUE_SQLITE_PATH", dbPath)
	t.Setenv("ITEMQUEUE_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Queue.Backend != config.BackendSQLite {
		t.Fatalf("backend = %q", cfg.Queue.Backend)
	}
	if cfg.Queue.Mode != config.ModeCached {
		t.Fatalf("mode = %q", cfg.Queue.Mode)
	}
	if cfg.SQLite.Path != dbPath {
		t.Fatalf("sqlite path = %q", cfg.SQLite.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"unknown backend", func(c *config.Config) { c.Queue.Backend = "redis" }, "queue.backend"},
		{"unknown mode", func(c *config.Config) { c.Queue.Mode = "lazy" }, "queue.mode"},
		{"memory without put", func(c *config.Config) { c.Queue.Backend = config.BackendMemory }, "memory.put"},
		{"memory with put", func(c *config.Config) {
			c.Queue.Backend = config.BackendMemory
			c.Memory.Put = true
		}, ""},
		{"duplicate tool names", func(c *config.Config) { c.Tools.Load.Name = c.Tools.Get.Name }, "already used"},
		{"duplicate disabled tool", func(c *config.Config) {
			c.Tools.Load.Name = c.Tools.Get.Name
			c.Tools.Load.Enabled = false
		}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Queue.Backend != config.BackendJSON {
		t.Fatalf("sample backend = %q", cfg.Queue.Backend)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "itemqueue.toml")
	if err := os.WriteFile(path, []byte("[queue]\nbackend = \"json\"\nbakend = \"csv\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown key, got %v", err)
	}
	if !strings.Contains(err.Error(), "bakend") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists || resolved != path {
		t.Fatalf("resolution = %q exists=%v", resolved, exists)
	}
	if cfg.Queue.Backend != config.BackendJSON || cfg.Queue.Mode != config.ModePassthrough {
		t.Fatalf("unexpected defaults: %+v", cfg.Queue)
	}
}
