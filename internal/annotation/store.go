package annotation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"voxcache/internal/logging"
	"voxcache/internal/services"
)

// VideoIDLength is the fixed width of a video identifier.
const VideoIDLength = 11

// Window is one annotated span of speech, in seconds from the start of the video.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// VideoAnnotation lists the speech windows of one speaker inside one video.
type VideoAnnotation struct {
	VideoID   string   `json:"video_id"`
	StartStop []Window `json:"start_stop"`
}

// SpeakerAnnotation is the ordered list of videos attributed to one speaker.
type SpeakerAnnotation []VideoAnnotation

// Store exposes the annotation asset and its inverted video index.
type Store struct {
	speakers   []SpeakerAnnotation
	videoIndex map[string]int
	windows    map[string][]Window
}

// rawVideo accepts both the distilled key (video_id) and the key used by the
// published asset (vid_youtube).
type rawVideo struct {
	VideoID    string      `json:"video_id"`
	VidYoutube string      `json:"vid_youtube"`
	StartStop  [][]float64 `json:"start_stop"`
}

// Load reads and validates the asset at path. Paths ending in ".zst" are
// decompressed on the fly.
func Load(path string, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "annotation")

	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrAssetLoad, "annotation", "open", path, err)
	}
	defer file.Close()

	var r io.Reader = bufio.NewReader(file)
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, services.Wrap(services.ErrAssetLoad, "annotation", "open zstd stream", path, err)
		}
		defer dec.Close()
		r = dec
	}

	store, err := Parse(r)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded annotation asset",
		logging.String("path", path),
		logging.Int("speakers", store.NumSpeakers()),
		logging.Int("videos", store.NumVideos()))
	return store, nil
}

// Parse decodes and validates an asset from r.
func Parse(r io.Reader) (*Store, error) {
	var raw [][]rawVideo
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, services.Wrap(services.ErrAssetLoad, "annotation", "decode", "", err)
	}
	if raw == nil {
		return nil, services.Wrap(services.ErrAssetLoad, "annotation", "decode", "asset is null", nil)
	}

	store := &Store{
		speakers:   make([]SpeakerAnnotation, len(raw)),
		videoIndex: make(map[string]int),
		windows:    make(map[string][]Window),
	}
	for speaker, videos := range raw {
		annotations := make(SpeakerAnnotation, 0, len(videos))
		for i, v := range videos {
			video, err := convertVideo(v)
			if err != nil {
				return nil, services.Wrap(services.ErrAssetLoad, "annotation", "validate",
					fmt.Sprintf("speaker %d video %d", speaker, i), err)
			}
			if owner, exists := store.videoIndex[video.VideoID]; exists {
				return nil, services.Wrap(services.ErrAssetLoad, "annotation", "validate",
					fmt.Sprintf("video %s listed under speakers %d and %d", video.VideoID, owner, speaker), nil)
			}
			store.videoIndex[video.VideoID] = speaker
			store.windows[video.VideoID] = video.StartStop
			annotations = append(annotations, video)
		}
		store.speakers[speaker] = annotations
	}
	return store, nil
}

func convertVideo(v rawVideo) (VideoAnnotation, error) {
	id := v.VideoID
	if id == "" {
		id = v.VidYoutube
	}
	if len(id) != VideoIDLength {
		return VideoAnnotation{}, fmt.Errorf("video id %q is not %d characters", id, VideoIDLength)
	}
	windows := make([]Window, 0, len(v.StartStop))
	for i, pair := range v.StartStop {
		if len(pair) != 2 {
			return VideoAnnotation{}, fmt.Errorf("video %s window %d has %d values, want 2", id, i, len(pair))
		}
		if pair[1] < pair[0] {
			return VideoAnnotation{}, fmt.Errorf("video %s window %d ends before it starts", id, i)
		}
		windows = append(windows, Window{Start: pair[0], End: pair[1]})
	}
	return VideoAnnotation{VideoID: id, StartStop: windows}, nil
}

// NumSpeakers returns the number of speaker groups in the asset.
func (s *Store) NumSpeakers() int {
	return len(s.speakers)
}

// NumVideos returns the number of distinct videos in the asset.
func (s *Store) NumVideos() int {
	return len(s.videoIndex)
}

// SpeakerAnnotations returns a copy of the videos attributed to speaker.
func (s *Store) SpeakerAnnotations(speaker int) (SpeakerAnnotation, bool) {
	if speaker < 0 || speaker >= len(s.speakers) {
		return nil, false
	}
	src := s.speakers[speaker]
	out := make(SpeakerAnnotation, len(src))
	for i, v := range src {
		out[i] = VideoAnnotation{
			VideoID:   v.VideoID,
			StartStop: append([]Window(nil), v.StartStop...),
		}
	}
	return out, true
}

// SpeakerVideos returns the speaker's video ids in asset order.
func (s *Store) SpeakerVideos(speaker int) ([]string, bool) {
	if speaker < 0 || speaker >= len(s.speakers) {
		return nil, false
	}
	ids := make([]string, len(s.speakers[speaker]))
	for i, v := range s.speakers[speaker] {
		ids[i] = v.VideoID
	}
	return ids, true
}

// SpeakerOf resolves the speaker a video is attributed to.
func (s *Store) SpeakerOf(videoID string) (int, bool) {
	speaker, ok := s.videoIndex[videoID]
	return speaker, ok
}

// VideoSpeakers returns a copy of the video-to-speaker inverted index.
func (s *Store) VideoSpeakers() map[string]int {
	out := make(map[string]int, len(s.videoIndex))
	for id, speaker := range s.videoIndex {
		out[id] = speaker
	}
	return out
}

// Window returns the annotated span that segment of video was cut from.
func (s *Store) Window(videoID string, segment int) (Window, bool) {
	windows, ok := s.windows[videoID]
	if !ok || segment < 0 || segment >= len(windows) {
		return Window{}, false
	}
	return windows[segment], true
}
