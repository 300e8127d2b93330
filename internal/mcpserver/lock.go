package mcpserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another server holds the lock file.
var ErrAlreadyRunning = errors.New("another itemqueue server is already running")

// instanceLock enforces single-instance execution via an advisory file lock.
type instanceLock struct {
	path string
	lock *flock.Flock
}

func newInstanceLock(path string) *instanceLock {
	return &instanceLock{path: path, lock: flock.New(path)}
}

func (l *instanceLock) acquire() error {
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create lock directory: %w", err)
		}
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, l.path)
	}
	return nil
}

func (l *instanceLock) release() error {
	return l.lock.Unlock()
}
