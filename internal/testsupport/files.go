package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voxcache/internal/config"
	"voxcache/internal/npy"
	"voxcache/internal/segcache"
)

// ScenarioAsset is a two-speaker annotation asset: speaker 0 owns
// AAAAAAAAAAA with two windows, speaker 1 owns BBBBBBBBBBB with one.
const ScenarioAsset = `[
  [{"video_id": "AAAAAAAAAAA", "start_stop": [[0, 1], [2, 3]]}],
  [{"video_id": "BBBBBBBBBBB", "start_stop": [[0, 2]]}]
]`

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteAnnotations writes an annotation asset to path.
func WriteAnnotations(t testing.TB, path, asset string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(asset), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSegment stores samples as one cached segment and returns its path.
func WriteSegment(t testing.TB, cfg *config.Config, videoID string, segment int, samples []float32) string {
	t.Helper()

	ext := cfg.Cache.Extension
	path := segcache.Path(cfg.Paths.CacheRoot, videoID, segment, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	codec := npy.NewCodec(ext)
	defer codec.Close()
	if err := codec.WriteFile(path, samples); err != nil {
		t.Fatalf("write segment %s: %v", path, err)
	}
	return path
}

// WriteScenario writes ScenarioAsset and caches AAAAAAAAAAA_000,
// AAAAAAAAAAA_001 and BBBBBBBBBBB_000.
func WriteScenario(t testing.TB, cfg *config.Config) {
	t.Helper()

	WriteAnnotations(t, cfg.Paths.AnnotationAsset, ScenarioAsset)
	WriteSegment(t, cfg, "AAAAAAAAAAA", 0, []float32{0.1, 0.2, 0.3})
	WriteSegment(t, cfg, "AAAAAAAAAAA", 1, []float32{0.4, 0.5})
	WriteSegment(t, cfg, "BBBBBBBBBBB", 0, []float32{-0.5, 0, 0.5, 1})
}
