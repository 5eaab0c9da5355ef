// Package segindex derives the in-memory lookup structures over a sorted scan
// of the segment cache: the set of speakers with cached data, the segments
// observed per video, and the position of every (video, segment) key.
//
// An Index is immutable once Build returns and may be shared between
// goroutines without locking. Positions are only meaningful together with the
// BuildID of the index that assigned them.
package segindex
