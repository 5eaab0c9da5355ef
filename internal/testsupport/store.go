package testsupport

import (
	"testing"

	"voxcache/internal/annotation"
	"voxcache/internal/config"
	"voxcache/internal/logging"
)

// MustLoadStore loads the configured annotation asset for tests.
func MustLoadStore(t testing.TB, cfg *config.Config) *annotation.Store {
	t.Helper()

	store, err := annotation.Load(cfg.Paths.AnnotationAsset, logging.NewNop())
	if err != nil {
		t.Fatalf("annotation.Load: %v", err)
	}
	return store
}
