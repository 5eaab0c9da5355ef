package segindex

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"voxcache/internal/segcache"
	"voxcache/internal/services"
)

// Key identifies one cached segment.
type Key struct {
	VideoID string
	Segment int
}

// Index is the query-ready view of one cache scan.
type Index struct {
	buildID  string
	entries  []segcache.Entry
	speakers *roaring.Bitmap
	segments map[string][]int
	position map[Key]int
}

// Build indexes entries in a single pass. Entries must already be in their
// final order; the position of each entry is its offset in the slice.
func Build(entries []segcache.Entry) (*Index, error) {
	idx := &Index{
		buildID:  uuid.NewString(),
		entries:  make([]segcache.Entry, len(entries)),
		speakers: roaring.New(),
		segments: make(map[string][]int),
		position: make(map[Key]int, len(entries)),
	}
	copy(idx.entries, entries)

	for i, entry := range idx.entries {
		if entry.Speaker < 0 {
			return nil, services.Wrap(services.ErrUnknownVideoID, "segindex", "build",
				fmt.Sprintf("%s has no speaker", entry.Name), nil)
		}
		key := Key{VideoID: entry.VideoID, Segment: entry.Segment}
		if prev, exists := idx.position[key]; exists {
			return nil, services.Wrap(services.ErrDuplicateEntry, "segindex", "build",
				fmt.Sprintf("%s and %s both map to %s segment %d",
					idx.entries[prev].Name, entry.Name, key.VideoID, key.Segment), nil)
		}
		idx.position[key] = i
		idx.speakers.Add(uint32(entry.Speaker))
		idx.segments[entry.VideoID] = append(idx.segments[entry.VideoID], entry.Segment)
	}
	idx.speakers.RunOptimize()
	return idx, nil
}

// BuildID identifies the build that assigned this index's positions.
func (x *Index) BuildID() string {
	return x.buildID
}

// Len returns the number of indexed entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// Entry returns the entry at position i.
func (x *Index) Entry(i int) (segcache.Entry, bool) {
	if i < 0 || i >= len(x.entries) {
		return segcache.Entry{}, false
	}
	return x.entries[i], true
}

// Entries returns a copy of the entry sequence.
func (x *Index) Entries() []segcache.Entry {
	return append([]segcache.Entry(nil), x.entries...)
}

// Position returns the position of (videoID, segment).
func (x *Index) Position(videoID string, segment int) (int, bool) {
	pos, ok := x.position[Key{VideoID: videoID, Segment: segment}]
	return pos, ok
}

// Segments returns a copy of the segment indices observed for videoID, in
// entry order.
func (x *Index) Segments(videoID string) ([]int, bool) {
	segs, ok := x.segments[videoID]
	if !ok {
		return nil, false
	}
	return append([]int(nil), segs...), true
}

// HasSpeaker reports whether any cached segment belongs to speaker.
func (x *Index) HasSpeaker(speaker int) bool {
	if speaker < 0 {
		return false
	}
	return x.speakers.Contains(uint32(speaker))
}

// Speakers returns the speakers with cached data in ascending order.
func (x *Index) Speakers() []int {
	out := make([]int, 0, x.speakers.GetCardinality())
	it := x.speakers.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// SpeakerCount returns the number of speakers with cached data.
func (x *Index) SpeakerCount() int {
	return int(x.speakers.GetCardinality())
}

// VideoCount returns the number of videos with at least one cached segment.
func (x *Index) VideoCount() int {
	return len(x.segments)
}
