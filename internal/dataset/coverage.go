package dataset

import (
	"fmt"

	"voxcache/internal/services"
)

// VideoCoverage compares the annotated segments of one video with the cache.
type VideoCoverage struct {
	VideoID   string `json:"video_id"`
	Annotated int    `json:"annotated"`
	Cached    []int  `json:"cached"`
	Missing   []int  `json:"missing"`
	// Extra lists cached segment indices with no annotated window.
	Extra          []int   `json:"extra,omitempty"`
	CachedSeconds  float64 `json:"cached_seconds"`
	MissingSeconds float64 `json:"missing_seconds"`
}

// Coverage reports how much of a speaker's leading videos is cached.
type Coverage struct {
	Speaker int             `json:"speaker"`
	TopK    int             `json:"top_k"`
	Videos  []VideoCoverage `json:"videos"`
	Cached  int             `json:"cached"`
	Missing int             `json:"missing"`
}

// Complete reports whether every annotated segment considered is cached.
func (c Coverage) Complete() bool {
	return c.Missing == 0
}

// Coverage inspects the first TopK annotated videos of speaker (all videos
// when TopK is not positive). Unlike AvailableSegments it accepts any speaker
// in the annotation asset, cached or not.
func (d *Dataset) Coverage(speaker int) (Coverage, error) {
	if err := d.ready(); err != nil {
		return Coverage{}, err
	}
	annotations, ok := d.store.SpeakerAnnotations(speaker)
	if !ok {
		return Coverage{}, services.Wrap(services.ErrUnknownSpeaker, "dataset", "coverage",
			fmt.Sprintf("speaker %d is not in the annotation asset (%d speakers)", speaker, d.store.NumSpeakers()), nil)
	}
	if k := d.opts.TopK; k > 0 && len(annotations) > k {
		annotations = annotations[:k]
	}

	report := Coverage{Speaker: speaker, TopK: d.opts.TopK, Videos: make([]VideoCoverage, 0, len(annotations))}
	for _, video := range annotations {
		vc := VideoCoverage{
			VideoID:   video.VideoID,
			Annotated: len(video.StartStop),
			Cached:    make([]int, 0, len(video.StartStop)),
			Missing:   make([]int, 0),
		}
		for segment, window := range video.StartStop {
			if _, cached := d.index.Position(video.VideoID, segment); cached {
				vc.Cached = append(vc.Cached, segment)
				vc.CachedSeconds += window.Duration()
			} else {
				vc.Missing = append(vc.Missing, segment)
				vc.MissingSeconds += window.Duration()
			}
		}
		segments, _ := d.index.Segments(video.VideoID)
		for _, segment := range segments {
			if segment >= len(video.StartStop) {
				vc.Extra = append(vc.Extra, segment)
			}
		}
		report.Cached += len(vc.Cached)
		report.Missing += len(vc.Missing)
		report.Videos = append(report.Videos, vc)
	}
	return report, nil
}
