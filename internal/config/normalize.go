package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCache()
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheRoot) == "" {
		c.Paths.CacheRoot = defaultCacheRoot
	}
	if c.Paths.CacheRoot, err = expandPath(c.Paths.CacheRoot); err != nil {
		return fmt.Errorf("paths.cache_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.AnnotationAsset) == "" {
		c.Paths.AnnotationAsset = defaultAnnotationAsset()
	}
	if c.Paths.AnnotationAsset, err = expandPath(c.Paths.AnnotationAsset); err != nil {
		return fmt.Errorf("paths.annotation_asset: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() {
	ext := strings.TrimSpace(c.Cache.Extension)
	if ext == "" {
		ext = defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Cache.Extension = strings.ToLower(ext)
	if c.Cache.LockTimeoutSeconds <= 0 {
		c.Cache.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
}

func (c *Config) normalizeScan() {
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = defaultScanWorkers
	}
	if c.Watch.DebounceMillis <= 0 {
		c.Watch.DebounceMillis = defaultWatchDebounceMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// defaultAnnotationAsset prefers the DATASET_UTILS directory when set and
// falls back to ./assets.
func defaultAnnotationAsset() string {
	if dir, ok := os.LookupEnv(annotationAssetDirEnv); ok && strings.TrimSpace(dir) != "" {
		return filepath.Join(strings.TrimSpace(dir), defaultAnnotationAssetName)
	}
	return filepath.Join(defaultAnnotationAssetDir, defaultAnnotationAssetName)
}
