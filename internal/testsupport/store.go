package testsupport

import (
	"testing"

	"reelforge/internal/config"
	"reelforge/internal/jobs"
)

// MustOpenStore opens a job history store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.OpenStore(cfg.Paths.DataDir)
	if err != nil {
		t.Fatalf("jobs.OpenStore: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
