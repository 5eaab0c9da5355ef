package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"voxcache/internal/config"
	"voxcache/internal/logging"
	"voxcache/internal/segcache"
	"voxcache/internal/services"
	"voxcache/internal/testsupport"
)

func openScenario(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, *Dataset) {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	testsupport.WriteScenario(t, cfg)
	store := testsupport.MustLoadStore(t, cfg)
	ds, err := Open(context.Background(), OptionsFromConfig(cfg), store, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(ds.Close)
	return cfg, ds
}

func TestOpenScenario(t *testing.T) {
	_, ds := openScenario(t)

	if ds.State() != StateQueryable {
		t.Fatalf("state = %s, want queryable", ds.State())
	}
	if got := ds.Speakers(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("speaker set = %v, want [0 1]", got)
	}
	want := map[string]int{"AAAAAAAAAAA": 0, "BBBBBBBBBBB": 1}
	if got := ds.Store().VideoSpeakers(); !reflect.DeepEqual(got, want) {
		t.Fatalf("video speakers = %v, want %v", got, want)
	}
	if ds.Len() != 3 {
		t.Fatalf("Len = %d, want 3", ds.Len())
	}
	if ds.BuildID() == "" {
		t.Fatal("expected build id")
	}
	if ds.SampleRate() != 16000 {
		t.Fatalf("SampleRate = %d", ds.SampleRate())
	}
}

func TestAvailablePositionsReadable(t *testing.T) {
	_, ds := openScenario(t)

	positions, err := ds.AvailablePositions(0)
	if err != nil {
		t.Fatalf("AvailablePositions: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions for speaker 0, got %v", positions)
	}
	for _, pos := range positions {
		if pos < 0 || pos >= ds.Len() {
			t.Fatalf("position %d outside [0, %d)", pos, ds.Len())
		}
		samples, speaker, err := ds.ReadIndex(pos)
		if err != nil {
			t.Fatalf("ReadIndex(%d): %v", pos, err)
		}
		if speaker != 0 {
			t.Fatalf("ReadIndex(%d) speaker = %d, want 0", pos, speaker)
		}
		if len(samples) == 0 {
			t.Fatalf("ReadIndex(%d) returned no samples", pos)
		}
	}

	samples, _, err := ds.ReadIndex(positions[0])
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if !reflect.DeepEqual(samples, []float32{0.1, 0.2, 0.3}) {
		t.Fatalf("samples = %v", samples)
	}
}

func TestAvailablePositionsInRangeForEverySpeaker(t *testing.T) {
	_, ds := openScenario(t)

	for _, speaker := range ds.Speakers() {
		positions, err := ds.AvailablePositions(speaker)
		if err != nil {
			t.Fatalf("AvailablePositions(%d): %v", speaker, err)
		}
		for _, pos := range positions {
			if pos < 0 || pos >= ds.Len() {
				t.Fatalf("speaker %d: position %d outside [0, %d)", speaker, pos, ds.Len())
			}
		}
	}
}

func TestAvailableSegmentsFollowsAssetOrder(t *testing.T) {
	_, ds := openScenario(t)

	refs, err := ds.AvailableSegments(0)
	if err != nil {
		t.Fatalf("AvailableSegments: %v", err)
	}
	want := []SegmentRef{{VideoID: "AAAAAAAAAAA", Segment: 0}, {VideoID: "AAAAAAAAAAA", Segment: 1}}
	if !reflect.DeepEqual(refs, want) {
		t.Fatalf("refs = %+v, want %+v", refs, want)
	}
}

func TestAvailableSegmentsUnknownSpeaker(t *testing.T) {
	_, ds := openScenario(t)

	_, err := ds.AvailableSegments(2)
	if !errors.Is(err, services.ErrUnknownSpeaker) {
		t.Fatalf("expected ErrUnknownSpeaker, got %v", err)
	}
	if !services.Recoverable(err) {
		t.Fatal("unknown speaker should be recoverable")
	}
	if _, err := ds.AvailablePositions(-1); !errors.Is(err, services.ErrUnknownSpeaker) {
		t.Fatalf("expected ErrUnknownSpeaker for negative speaker, got %v", err)
	}
}

func TestUnknownVideoFailsOpen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteScenario(t, cfg)
	testsupport.WriteSegment(t, cfg, "CCCCCCCCCCC", 0, []float32{1})
	store := testsupport.MustLoadStore(t, cfg)

	ds := New(OptionsFromConfig(cfg), store, logging.NewNop())
	err := ds.Load(context.Background())
	if !errors.Is(err, services.ErrUnknownVideoID) {
		t.Fatalf("expected ErrUnknownVideoID, got %v", err)
	}
	if ds.State() != StateFailed {
		t.Fatalf("state = %s, want failed", ds.State())
	}
	if _, err := ds.AvailableSegments(0); !errors.Is(err, ErrNotQueryable) {
		t.Fatalf("expected ErrNotQueryable after failed load, got %v", err)
	}
}

func TestPaddedDuplicateFailsOpen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteScenario(t, cfg)
	dup := segcache.Path(cfg.Paths.CacheRoot, "AAAAAAAAAAA", 1, cfg.Cache.Extension)
	padded := filepath.Join(filepath.Dir(dup), "AAAAAAAAAAA_0001"+cfg.Cache.Extension)
	data, err := os.ReadFile(dup)
	if err != nil {
		t.Fatalf("read segment: %v", err)
	}
	if err := os.WriteFile(padded, data, 0o644); err != nil {
		t.Fatalf("write padded segment: %v", err)
	}

	ds := New(OptionsFromConfig(cfg), testsupport.MustLoadStore(t, cfg), logging.NewNop())
	defer ds.Close()
	err = ds.Load(context.Background())
	if !errors.Is(err, services.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
	if ds.State() != StateFailed {
		t.Fatalf("state = %s, want failed", ds.State())
	}
}

func TestDeletedFileIsStale(t *testing.T) {
	cfg, ds := openScenario(t)

	positions, err := ds.AvailablePositions(1)
	if err != nil {
		t.Fatalf("AvailablePositions: %v", err)
	}
	if err := os.Remove(segcache.Path(cfg.Paths.CacheRoot, "BBBBBBBBBBB", 0, cfg.Cache.Extension)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, _, err = ds.ReadIndex(positions[0])
	if !errors.Is(err, services.ErrStaleCacheEntry) {
		t.Fatalf("expected ErrStaleCacheEntry, got %v", err)
	}
}

func TestCorruptFile(t *testing.T) {
	cfg, ds := openScenario(t)

	pos, ok := ds.Index().Position("AAAAAAAAAAA", 1)
	if !ok {
		t.Fatal("missing position")
	}
	testsupport.WriteFile(t, segcache.Path(cfg.Paths.CacheRoot, "AAAAAAAAAAA", 1, cfg.Cache.Extension), 16)
	_, _, err := ds.ReadIndex(pos)
	if !errors.Is(err, services.ErrCorruptSegment) {
		t.Fatalf("expected ErrCorruptSegment, got %v", err)
	}
}

func TestReadIndexOutOfRange(t *testing.T) {
	_, ds := openScenario(t)

	for _, pos := range []int{-1, 3, 100} {
		if _, _, err := ds.ReadIndex(pos); !errors.Is(err, services.ErrPositionOutOfRange) {
			t.Fatalf("ReadIndex(%d): expected ErrPositionOutOfRange, got %v", pos, err)
		}
	}
}

func TestFilesAddedAfterLoadAreInvisible(t *testing.T) {
	cfg, ds := openScenario(t)

	testsupport.WriteSegment(t, cfg, "BBBBBBBBBBB", 1, []float32{0.25})
	refs, err := ds.AvailableSegments(1)
	if err != nil {
		t.Fatalf("AvailableSegments: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected the original single segment, got %+v", refs)
	}

	store := testsupport.MustLoadStore(t, cfg)
	fresh, err := Open(context.Background(), OptionsFromConfig(cfg), store, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fresh.Close()
	refs, err = fresh.AvailableSegments(1)
	if err != nil {
		t.Fatalf("AvailableSegments: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected reopened dataset to see 2 segments, got %+v", refs)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	cfg, first := openScenario(t)

	second, err := Open(context.Background(), OptionsFromConfig(cfg), first.Store(), logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer second.Close()

	if !reflect.DeepEqual(first.Speakers(), second.Speakers()) {
		t.Fatalf("speaker sets differ: %v vs %v", first.Speakers(), second.Speakers())
	}
	if !reflect.DeepEqual(first.Index().Entries(), second.Index().Entries()) {
		t.Fatal("entry order differs between builds")
	}
	for _, video := range []string{"AAAAAAAAAAA", "BBBBBBBBBBB"} {
		a, _ := first.Index().Segments(video)
		b, _ := second.Index().Segments(video)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("segments for %s differ: %v vs %v", video, a, b)
		}
	}
	if first.BuildID() == second.BuildID() {
		t.Fatal("builds should carry distinct ids")
	}
}

func TestLoadTwiceFails(t *testing.T) {
	_, ds := openScenario(t)

	if err := ds.Load(context.Background()); err == nil {
		t.Fatal("expected second Load to fail")
	}
	if ds.State() != StateQueryable {
		t.Fatalf("state changed to %s after rejected Load", ds.State())
	}
}

func TestQueriesBeforeLoad(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteScenario(t, cfg)
	ds := New(OptionsFromConfig(cfg), testsupport.MustLoadStore(t, cfg), logging.NewNop())
	defer ds.Close()

	if ds.State() != StateUninitialized {
		t.Fatalf("state = %s, want uninitialized", ds.State())
	}
	if _, _, err := ds.ReadIndex(0); !errors.Is(err, ErrNotQueryable) {
		t.Fatalf("expected ErrNotQueryable, got %v", err)
	}
	if ds.Index() != nil {
		t.Fatal("expected nil index before Load")
	}
}

func TestEmptyCache(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAnnotations(testsupport.ScenarioAsset))
	ds, err := Open(context.Background(), OptionsFromConfig(cfg), testsupport.MustLoadStore(t, cfg), logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()

	if ds.Len() != 0 || len(ds.Speakers()) != 0 {
		t.Fatal("expected empty dataset")
	}
	if _, err := ds.AvailableSegments(0); !errors.Is(err, services.ErrUnknownSpeaker) {
		t.Fatalf("expected ErrUnknownSpeaker, got %v", err)
	}
}

func TestCompressedSegments(t *testing.T) {
	_, ds := openScenario(t, testsupport.WithExtension(".npy.zst"))

	positions, err := ds.AvailablePositions(1)
	if err != nil {
		t.Fatalf("AvailablePositions: %v", err)
	}
	samples, speaker, err := ds.ReadIndex(positions[0])
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if speaker != 1 || !reflect.DeepEqual(samples, []float32{-0.5, 0, 0.5, 1}) {
		t.Fatalf("ReadIndex = %v, %d", samples, speaker)
	}
}

func TestReadAfterCloseNotQueryable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithExtension(".npy.zst"))
	testsupport.WriteScenario(t, cfg)
	ds, err := Open(context.Background(), OptionsFromConfig(cfg), testsupport.MustLoadStore(t, cfg), logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, _, err := ds.ReadIndex(0); err != nil {
		t.Fatalf("ReadIndex before Close: %v", err)
	}

	ds.Close()
	ds.Close()
	if ds.State() != StateClosed {
		t.Fatalf("state = %s, want closed", ds.State())
	}
	_, _, err = ds.ReadIndex(0)
	if !errors.Is(err, ErrNotQueryable) {
		t.Fatalf("expected ErrNotQueryable after Close, got %v", err)
	}
	if errors.Is(err, services.ErrCorruptSegment) {
		t.Fatalf("closed dataset reported a corrupt segment: %v", err)
	}
	if _, err := ds.AvailableSegments(0); !errors.Is(err, ErrNotQueryable) {
		t.Fatalf("expected ErrNotQueryable from AvailableSegments, got %v", err)
	}
}

func TestCloseKeepsFailedState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ds := New(OptionsFromConfig(cfg), nil, logging.NewNop())
	if err := ds.Load(context.Background()); err == nil {
		t.Fatal("expected Load without store to fail")
	}
	ds.Close()
	if ds.State() != StateFailed {
		t.Fatalf("state = %s, want failed", ds.State())
	}
}

func TestOpenWithoutStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := Open(context.Background(), OptionsFromConfig(cfg), nil, logging.NewNop())
	if !errors.Is(err, services.ErrAssetLoad) {
		t.Fatalf("expected ErrAssetLoad, got %v", err)
	}
}

func removeSegment(t *testing.T, root, videoID string, segment int, ext string) {
	t.Helper()
	if err := os.Remove(segcache.Path(root, videoID, segment, ext)); err != nil {
		t.Fatalf("remove segment: %v", err)
	}
}
