package testsupport

import (
	"context"
	"testing"

	"itemqueue/internal/config"
	"itemqueue/internal/loader"
	"itemqueue/internal/logging"
)

// MustLoader builds and initializes the loader selected by cfg and
// registers cleanup.
func MustLoader(t testing.TB, cfg *config.Config) loader.Loader {
	t.Helper()

	l, err := loader.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("loader.New: %v", err)
	}
	if err := l.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() {
		_ = l.Close()
	})
	return l
}
