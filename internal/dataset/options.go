package dataset

import (
	"time"

	"voxcache/internal/config"
	"voxcache/internal/segcache"
)

// Options configures a Dataset.
type Options struct {
	Root        string
	Extension   string
	Workers     int
	Lock        bool
	LockTimeout time.Duration
	SampleRate  int
	TopK        int
}

// OptionsFromConfig derives dataset options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:        cfg.Paths.CacheRoot,
		Extension:   cfg.Cache.Extension,
		Workers:     cfg.Scan.Workers,
		Lock:        cfg.Cache.Lock,
		LockTimeout: cfg.LockTimeout(),
		SampleRate:  cfg.Preproc.SampleRate,
		TopK:        cfg.Preproc.TopK,
	}
}

func (o Options) scanner() segcache.Options {
	return segcache.Options{
		Root:        o.Root,
		Extension:   o.Extension,
		Workers:     o.Workers,
		Lock:        o.Lock,
		LockTimeout: o.LockTimeout,
	}
}
