package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePreproc(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CacheRoot) == "" {
		return errors.New("paths.cache_root must be set")
	}
	if strings.TrimSpace(c.Paths.AnnotationAsset) == "" {
		return errors.New("paths.annotation_asset must be set")
	}
	return nil
}

func (c *Config) validatePreproc() error {
	if c.Preproc.TopK <= 0 {
		return fmt.Errorf("preproc.top_k must be positive, got %d", c.Preproc.TopK)
	}
	if c.Preproc.SampleRate <= 0 {
		return fmt.Errorf("preproc.sample_rate must be positive, got %d", c.Preproc.SampleRate)
	}
	return nil
}

func (c *Config) validateCache() error {
	ext := c.Cache.Extension
	if ext == "." || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("cache.extension %q is not a valid file extension", ext)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
