package preflight

import (
	"context"

	"voxcache/internal/config"
	"voxcache/internal/segcache"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckAnnotationAsset(cfg.Paths.AnnotationAsset))
	results = append(results, CheckDirectoryAccess("Cache root", cfg.Paths.CacheRoot, ReadOnly))
	results = append(results, CheckDirectoryAccess("Segment directory", segcache.SegmentDir(cfg.Paths.CacheRoot), ReadOnly))

	// The lock file lives next to the segment directory and must be creatable.
	if cfg.Cache.Lock {
		results = append(results, CheckScanLock(ctx, cfg.Paths.CacheRoot))
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, ReadWrite))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
