// Package logging assembles structured slog loggers and formatting helpers used
// across voxcache.
//
// Two handlers are available. The console handler prints one line per record
// and lifts the component, the cache entry (video, segment, position), any
// alert and a shortened build id out of the key=value tail. The JSON handler
// emits flat objects with durations in milliseconds. Context helpers tag
// records with build IDs, speaker indices and correlation IDs, and NewNop
// serves tests and wiring code that cannot fail.
package logging
