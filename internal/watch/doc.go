// Package watch rebuilds the dataset when the segment directory changes.
//
// Datasets are immutable, so a rebuild opens a fresh one and hands it to
// the caller's handler; the previous dataset keeps serving whoever holds it.
// Bursts of filesystem events (a downloader writing a whole video) are
// coalesced by a debounce window before rebuilding.
package watch
