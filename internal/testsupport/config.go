package testsupport

import (
	"path/filepath"
	"testing"

	"voxcache/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheRoot = filepath.Join(base, "cache")
	cfgVal.Paths.AnnotationAsset = filepath.Join(base, "assets", "annotations.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Scan.Workers = 2
	cfgVal.Cache.LockTimeoutSeconds = 1
	cfgVal.Watch.DebounceMillis = 20

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithExtension overrides the cached segment extension.
func WithExtension(ext string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Extension = ext
	}
}

// WithTopK overrides preproc.top_k.
func WithTopK(k int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preproc.TopK = k
	}
}

// WithAnnotations writes asset as the configured annotation asset.
func WithAnnotations(asset string) ConfigOption {
	return func(b *configBuilder) {
		WriteAnnotations(b.t, b.cfg.Paths.AnnotationAsset, asset)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheRoot)
}
