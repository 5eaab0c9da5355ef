package config

const (
	defaultCacheRoot           = "."
	defaultAnnotationAssetDir  = "./assets"
	defaultAnnotationAssetName = "voxceleb_youtube_video_speaker_annotations.json"
	defaultLogDir              = "~/.local/share/voxcache/logs"
	defaultTopK                = 3
	defaultSampleRate          = 16000
	defaultExtension           = ".npy"
	defaultLockTimeoutSeconds  = 10
	defaultScanWorkers         = 4
	defaultWatchDebounceMillis = 500
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	annotationAssetDirEnv      = "DATASET_UTILS"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheRoot: defaultCacheRoot,
			LogDir:    defaultLogDir,
		},
		Preproc: Preproc{
			TopK:       defaultTopK,
			SampleRate: defaultSampleRate,
		},
		Cache: Cache{
			Extension:          defaultExtension,
			Lock:               true,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Scan: Scan{
			Workers: defaultScanWorkers,
		},
		Watch: Watch{
			DebounceMillis: defaultWatchDebounceMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
