package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"voxcache/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DATASET_UTILS", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "voxcache", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if !filepath.IsAbs(cfg.Paths.CacheRoot) {
		t.Fatalf("expected absolute cache root, got %q", cfg.Paths.CacheRoot)
	}
	if !strings.HasSuffix(cfg.Paths.AnnotationAsset, filepath.Join("assets", "voxceleb_youtube_video_speaker_annotations.json")) {
		t.Fatalf("unexpected annotation asset: %q", cfg.Paths.AnnotationAsset)
	}
	if cfg.Preproc.TopK != 3 {
		t.Fatalf("expected top_k default 3, got %d", cfg.Preproc.TopK)
	}
	if cfg.Preproc.SampleRate != 16000 {
		t.Fatalf("expected sample_rate default 16000, got %d", cfg.Preproc.SampleRate)
	}
	if cfg.Cache.Extension != ".npy" {
		t.Fatalf("expected .npy extension, got %q", cfg.Cache.Extension)
	}
	if !cfg.Cache.Lock {
		t.Fatal("expected scan lock enabled by default")
	}
	if cfg.LockTimeout() != 10*time.Second {
		t.Fatalf("unexpected lock timeout %s", cfg.LockTimeout())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadUsesDatasetUtilsEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assets := t.TempDir()
	t.Setenv("DATASET_UTILS", assets)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := filepath.Join(assets, "voxceleb_youtube_video_speaker_annotations.json")
	if cfg.Paths.AnnotationAsset != want {
		t.Fatalf("annotation asset = %q, want %q", cfg.Paths.AnnotationAsset, want)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, "voxcache.toml")

	cfg := config.Default()
	cfg.Paths.CacheRoot = filepath.Join(dir, "cache")
	cfg.Paths.AnnotationAsset = filepath.Join(dir, "annotations.json")
	cfg.Preproc.TopK = 5
	cfg.Preproc.SampleRate = 8000
	cfg.Cache.Extension = "npy.zst"
	cfg.Scan.Workers = 0
	cfg.Logging.Format = "JSON"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if loaded.Paths.CacheRoot != filepath.Join(dir, "cache") {
		t.Fatalf("unexpected cache root %q", loaded.Paths.CacheRoot)
	}
	if loaded.SegmentDir() != filepath.Join(dir, "cache", "voxceleb2", "np_files") {
		t.Fatalf("unexpected segment dir %q", loaded.SegmentDir())
	}
	if loaded.Preproc.TopK != 5 || loaded.Preproc.SampleRate != 8000 {
		t.Fatalf("unexpected preproc %+v", loaded.Preproc)
	}
	if loaded.Cache.Extension != ".npy.zst" {
		t.Fatalf("expected normalized extension, got %q", loaded.Cache.Extension)
	}
	if loaded.Scan.Workers != 4 {
		t.Fatalf("expected default workers, got %d", loaded.Scan.Workers)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", loaded.Logging.Format)
	}
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "voxcache.toml")
	if err := os.WriteFile(configPath, []byte("[preproc]\nsr_audio = 16000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"top_k", func(c *config.Config) { c.Preproc.TopK = 0 }, "preproc.top_k"},
		{"sample_rate", func(c *config.Config) { c.Preproc.SampleRate = -1 }, "preproc.sample_rate"},
		{"extension", func(c *config.Config) { c.Cache.Extension = "./npy" }, "cache.extension"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"annotation", func(c *config.Config) { c.Paths.AnnotationAsset = "" }, "paths.annotation_asset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.AnnotationAsset = "/tmp/annotations.json"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Preproc.TopK != 3 {
		t.Fatalf("unexpected sample top_k %d", cfg.Preproc.TopK)
	}
}

func TestEncodeRoundTripsSections(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	for _, section := range []string{"[paths]", "[preproc]", "[cache]", "[scan]", "[logging]"} {
		if !strings.Contains(string(data), section) {
			t.Fatalf("expected %s in encoded config:\n%s", section, data)
		}
	}
}
