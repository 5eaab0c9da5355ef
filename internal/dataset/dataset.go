package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"
	"time"

	"voxcache/internal/annotation"
	"voxcache/internal/logging"
	"voxcache/internal/npy"
	"voxcache/internal/segcache"
	"voxcache/internal/segindex"
	"voxcache/internal/services"
)

// ErrNotQueryable is returned by queries issued before Load succeeded.
var ErrNotQueryable = errors.New("dataset: not queryable")

// SegmentRef names one cached segment.
type SegmentRef struct {
	VideoID string `json:"video_id"`
	Segment int    `json:"segment"`
}

// Dataset serves read-only queries over one cache scan.
type Dataset struct {
	opts    Options
	store   *annotation.Store
	scanner *segcache.Scanner
	codec   *npy.Codec
	logger  *slog.Logger

	state atomic.Int32
	index *segindex.Index
}

// New prepares a Dataset in the Uninitialized state. Call Load before
// querying.
func New(opts Options, store *annotation.Store, logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dataset{
		opts:    opts,
		store:   store,
		scanner: segcache.NewScanner(opts.scanner(), store, logger),
		codec:   npy.NewCodec(opts.Extension),
		logger:  logging.NewComponentLogger(logger, "dataset"),
	}
}

// Open creates a Dataset and loads it.
func Open(ctx context.Context, opts Options, store *annotation.Store, logger *slog.Logger) (*Dataset, error) {
	d := New(opts, store, logger)
	if err := d.Load(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Load scans the cache and builds the index. It may be called once; a
// Dataset that failed to load stays failed.
func (d *Dataset) Load(ctx context.Context) error {
	if d.store == nil {
		d.state.Store(int32(StateFailed))
		return services.Wrap(services.ErrAssetLoad, "dataset", "load", "no annotation store", nil)
	}
	if !d.state.CompareAndSwap(int32(StateUninitialized), int32(StateScanning)) {
		return fmt.Errorf("dataset: load called in state %s", d.State())
	}

	started := time.Now()
	entries, err := d.scanner.Scan(ctx)
	if err != nil {
		d.state.Store(int32(StateFailed))
		return err
	}

	index, err := segindex.Build(entries)
	if err != nil {
		d.state.Store(int32(StateFailed))
		return err
	}
	d.index = index
	d.state.Store(int32(StateIndexed))

	d.logger.InfoContext(ctx, fmt.Sprintf("read %d files from cache covering %d speakers", index.Len(), index.SpeakerCount()),
		logging.BuildID(index.BuildID()),
		logging.String("segment_dir", d.scanner.Dir()),
		logging.Int("entries", index.Len()),
		logging.Int("speakers", index.SpeakerCount()),
		logging.Int("videos", index.VideoCount()),
		logging.Duration("elapsed", time.Since(started)))

	d.state.Store(int32(StateQueryable))
	return nil
}

// State returns the current lifecycle stage.
func (d *Dataset) State() State {
	return State(d.state.Load())
}

func (d *Dataset) ready() error {
	if d.State() != StateQueryable {
		return fmt.Errorf("%w (state %s)", ErrNotQueryable, d.State())
	}
	return nil
}

// Index returns the index built by Load, or nil before it.
func (d *Dataset) Index() *segindex.Index {
	if d.ready() != nil {
		return nil
	}
	return d.index
}

// Store returns the annotation store the Dataset was built against.
func (d *Dataset) Store() *annotation.Store {
	return d.store
}

// BuildID identifies the index positions belong to.
func (d *Dataset) BuildID() string {
	if idx := d.Index(); idx != nil {
		return idx.BuildID()
	}
	return ""
}

// Len returns the number of indexed segments.
func (d *Dataset) Len() int {
	if idx := d.Index(); idx != nil {
		return idx.Len()
	}
	return 0
}

// SampleRate returns the configured rate of the stored sample arrays.
func (d *Dataset) SampleRate() int {
	return d.opts.SampleRate
}

// SegmentDir returns the directory the Dataset was scanned from.
func (d *Dataset) SegmentDir() string {
	return d.scanner.Dir()
}

// Path returns the file backing a segment.
func (d *Dataset) Path(videoID string, segment int) string {
	return segcache.Path(d.opts.Root, videoID, segment, d.opts.Extension)
}

// ReadIndex loads the samples stored at position and the speaker they belong
// to.
func (d *Dataset) ReadIndex(position int) ([]float32, int, error) {
	if err := d.ready(); err != nil {
		return nil, 0, err
	}
	entry, ok := d.index.Entry(position)
	if !ok {
		return nil, 0, services.Wrap(services.ErrPositionOutOfRange, "dataset", "read index",
			fmt.Sprintf("position %d outside [0, %d) of build %s", position, d.index.Len(), d.index.BuildID()), nil)
	}
	samples, err := d.readEntry(entry)
	if err != nil {
		return nil, 0, err
	}
	return samples, entry.Speaker, nil
}

func (d *Dataset) readEntry(entry segcache.Entry) ([]float32, error) {
	path := d.Path(entry.VideoID, entry.Segment)
	samples, err := d.codec.ReadFile(path)
	switch {
	case err == nil:
		return samples, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, services.Wrap(services.ErrStaleCacheEntry, "dataset", "read segment",
			fmt.Sprintf("%s was indexed but is no longer on disk", path), err)
	case errors.Is(err, npy.ErrFormat):
		return nil, services.Wrap(services.ErrCorruptSegment, "dataset", "read segment", path, err)
	default:
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
}

// AvailableSegments lists the cached segments of speaker, following the
// speaker's annotated videos in asset order and each video's segments in
// index order.
func (d *Dataset) AvailableSegments(speaker int) ([]SegmentRef, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	if !d.index.HasSpeaker(speaker) {
		return nil, services.Wrap(services.ErrUnknownSpeaker, "dataset", "available segments",
			fmt.Sprintf("speaker %d has no cached segments", speaker), nil)
	}
	videos, _ := d.store.SpeakerVideos(speaker)
	refs := make([]SegmentRef, 0)
	for _, videoID := range videos {
		segments, ok := d.index.Segments(videoID)
		if !ok {
			continue
		}
		for _, segment := range segments {
			refs = append(refs, SegmentRef{VideoID: videoID, Segment: segment})
		}
	}
	return refs, nil
}

// AvailablePositions maps AvailableSegments through the position index.
// Every returned value is a valid argument to ReadIndex on this Dataset.
func (d *Dataset) AvailablePositions(speaker int) ([]int, error) {
	refs, err := d.AvailableSegments(speaker)
	if err != nil {
		return nil, err
	}
	positions := make([]int, 0, len(refs))
	for _, ref := range refs {
		pos, ok := d.index.Position(ref.VideoID, ref.Segment)
		if !ok {
			// Segments and positions come from the same build.
			return nil, fmt.Errorf("dataset: %s segment %d missing from position index", ref.VideoID, ref.Segment)
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// Speakers returns the speakers with cached data in ascending order.
func (d *Dataset) Speakers() []int {
	if idx := d.Index(); idx != nil {
		return idx.Speakers()
	}
	return nil
}

// Close releases decoder state and ends querying. A failed Dataset keeps
// StateFailed; closing twice is a no-op.
func (d *Dataset) Close() {
	for {
		current := d.State()
		if current == StateClosed {
			return
		}
		if current == StateFailed {
			break
		}
		if d.state.CompareAndSwap(int32(current), int32(StateClosed)) {
			break
		}
	}
	d.codec.Close()
}
