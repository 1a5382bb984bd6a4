package testsupport

import (
	"testing"

	"reelctl/internal/config"
	"reelctl/internal/localstore"
)

// MustOpenStore opens a localstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...localstore.Option) *localstore.Store {
	t.Helper()

	store, err := localstore.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
