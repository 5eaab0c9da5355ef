// Package segcache enumerates cached audio segments on disk.
//
// Segments live under <cache_root>/voxceleb2/np_files as
// <video_id>_<segment:03d><ext>, where video_id is the fixed-width identifier
// from the annotation asset and segment is the index of the annotated window
// the audio was cut from. The scanner lists that directory, validates every
// name against this grammar, resolves the owning speaker, and returns the
// entries sorted by (video, segment) so that positions derived from the
// result are reproducible across platforms.
//
// # Locking
//
// While listing, the scanner holds a shared lock on
// <cache_root>/voxceleb2/np_files.lock. Processes that add or remove segments
// are expected to take the same lock exclusively, which keeps the directory
// quiescent during a scan.
package segcache
