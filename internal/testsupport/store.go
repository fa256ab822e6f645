package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/runs"
)

// MustOpenStore opens a runs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runs.Store {
	t.Helper()

	store, err := runs.Open(cfg)
	if err != nil {
		t.Fatalf("runs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun creates a pending run whose work directory lives under the config workspace.
func NewRun(t testing.TB, store *runs.Store, cfg *config.Config, prompt string) *runs.Run {
	t.Helper()

	run, err := store.NewRun(context.Background(), prompt, filepath.Join(cfg.Paths.WorkspaceDir, "pending"))
	if err != nil {
		t.Fatalf("store.NewRun: %v", err)
	}
	return run
}
