package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir      string
	templatesDir string
	configPath   string
}

// setupCLITestEnv writes a config for backend under a fresh HOME. Extra TOML
// lines are appended verbatim.
func setupCLITestEnv(t *testing.T, backend string, extra ...string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"ITEMQUEUE_BACKEND", "ITEMQUEUE_MODE", "ITEMQUEUE_TEMPLATES_DIR", "ITEMQUEUE_SQLITE_PATH"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		baseDir:      base,
		templatesDir: filepath.Join(base, "templates"),
		configPath:   filepath.Join(base, "itemqueue.toml"),
	}

	content := fmt.Sprintf(`[queue]
backend = %q
mode = "passthrough"

[files]
templates_dir = %q
active_template = "queue"

[sqlite]
path = %q

[server]
lock_path = %q

[logging]
level = "error"
`, backend, env.templatesDir, filepath.Join(base, "itemqueue.db"), filepath.Join(base, "itemqueue.lock"))
	content += strings.Join(extra, "\n") + "\n"

	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeTemplate(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(e.templatesDir, 0o755); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.templatesDir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
