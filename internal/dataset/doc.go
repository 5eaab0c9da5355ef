// Package dataset answers speaker-availability and segment-read queries over
// one scan of the segment cache.
//
// A Dataset moves through Uninitialized, Scanning, Indexed and Queryable
// exactly once. Files added to or removed from the cache after Load are
// invisible until a new Dataset is opened; the watch package does that on
// filesystem events. Once Queryable, a Dataset is safe for concurrent use
// without locking.
//
// Positions returned by AvailablePositions are offsets into the sorted scan
// and are only valid for the Dataset (and BuildID) that produced them.
package dataset
