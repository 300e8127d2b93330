package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"itemqueue/internal/config"
	"itemqueue/internal/loader"
	"itemqueue/internal/logging"
)

// CheckDirectoryAccess verifies that path exists, is a directory, and is
// readable, writable, and searchable by the current user.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckMemory verifies the memory backend is write-enabled.
func CheckMemory(cfg config.Memory) Result {
	const name = "Memory backend"
	if !cfg.Put {
		return Result{Name: name, Detail: "put is disabled (set memory.put = true)"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("write-enabled, %d seed items", len(cfg.Items))}
}

// CheckCredentials verifies the spreadsheet credentials file and that a
// spreadsheet id is available from config or the file.
func CheckCredentials(path, spreadsheetID string) Result {
	const name = "Sheets credentials"

	if unix.Access(path, unix.R_OK) != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable)", path)}
	}
	creds, err := loader.LoadCredentials(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if strings.TrimSpace(spreadsheetID) == "" && strings.TrimSpace(creds.SpreadsheetID) == "" {
		return Result{Name: name, Detail: "spreadsheet id missing (set sheets.spreadsheet_id)"}
	}
	if creds.ServiceAccount() {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("service account %s", creds.ClientEmail)}
	}
	return Result{Name: name, Passed: true, Detail: "api key (read-only)"}
}

// CheckBackend initializes the configured loader and lists its templates.
// It uses a 30-second timeout and a single attempt.
func CheckBackend(ctx context.Context, cfg *config.Config) Result {
	name := fmt.Sprintf("Backend (%s)", cfg.Queue.Backend)

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	l, err := loader.New(cfg, logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer l.Close()

	if err := l.Initialize(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	templates, err := l.Templates(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d templates", len(templates))}
}
