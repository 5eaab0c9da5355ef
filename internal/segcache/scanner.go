package segcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"voxcache/internal/logging"
	"voxcache/internal/services"
)

const lockRetryDelay = 50 * time.Millisecond

// Entry is one cached segment, inferred from its file name.
type Entry struct {
	VideoID string `json:"video_id"`
	Speaker int    `json:"speaker"`
	Segment int    `json:"segment"`
	Name    string `json:"name"`
}

// SpeakerResolver maps a video id to the speaker it is attributed to.
type SpeakerResolver interface {
	SpeakerOf(videoID string) (int, bool)
}

// Options configures a Scanner.
type Options struct {
	Root        string
	Extension   string
	Workers     int
	Lock        bool
	LockTimeout time.Duration
}

// Scanner lists and parses the segment directory.
type Scanner struct {
	opts     Options
	resolver SpeakerResolver
	logger   *slog.Logger
}

// NewScanner builds a scanner for the cache under opts.Root.
func NewScanner(opts Options, resolver SpeakerResolver, logger *slog.Logger) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Scanner{
		opts:     opts,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "segcache"),
	}
}

// Dir returns the directory the scanner lists.
func (s *Scanner) Dir() string {
	return SegmentDir(s.opts.Root)
}

// Scan returns every cached segment sorted by (video, segment). A missing
// segment directory yields no entries.
func (s *Scanner) Scan(ctx context.Context) ([]Entry, error) {
	release, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	names, err := s.list()
	if err != nil {
		return nil, err
	}

	entries, err := s.parse(ctx, names)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].VideoID != entries[j].VideoID {
			return entries[i].VideoID < entries[j].VideoID
		}
		if entries[i].Segment != entries[j].Segment {
			return entries[i].Segment < entries[j].Segment
		}
		return entries[i].Name < entries[j].Name
	})

	s.logger.DebugContext(ctx, "scanned segment directory",
		logging.String("dir", s.Dir()),
		logging.Int("entries", len(entries)),
		logging.Duration("elapsed", time.Since(started)))
	return entries, nil
}

// list returns matching file names in directory order.
func (s *Scanner) list() ([]string, error) {
	dir := s.Dir()
	f, err := os.Open(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "segment directory missing", "segment_dir_missing",
				logging.String("dir", dir),
				logging.String(logging.FieldErrorHint, "populate the cache or check paths.cache_root"),
				logging.String(logging.FieldImpact, "index will be empty"))
			return nil, nil
		}
		return nil, fmt.Errorf("segcache: open %s: %w", dir, err)
	}
	defer f.Close()

	// ReadDir on an open file keeps directory order; sorting happens after parsing.
	dirEntries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("segcache: list %s: %w", dir, err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), s.opts.Extension) {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}

// parse resolves names in parallel chunks. Each chunk writes only its own
// slice, so no locking is needed before the merge.
func (s *Scanner) parse(ctx context.Context, names []string) ([]Entry, error) {
	if len(names) == 0 {
		return []Entry{}, nil
	}
	workers := min(s.opts.Workers, len(names))
	chunkSize := (len(names) + workers - 1) / workers
	parts := make([][]Entry, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := range workers {
		lo := w * chunkSize
		hi := min(lo+chunkSize, len(names))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			out := make([]Entry, 0, hi-lo)
			for _, name := range names[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				entry, err := s.parseOne(name)
				if err != nil {
					return err
				}
				out = append(out, entry)
			}
			parts[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, part := range parts {
		entries = append(entries, part...)
	}
	return entries, nil
}

func (s *Scanner) parseOne(name string) (Entry, error) {
	videoID, segment, err := ParseName(name, s.opts.Extension)
	if err != nil {
		return Entry{}, err
	}
	speaker, ok := s.resolver.SpeakerOf(videoID)
	if !ok {
		return Entry{}, services.Wrap(services.ErrUnknownVideoID, "segcache", "resolve speaker",
			fmt.Sprintf("%s (file %s) is not in the annotation asset", videoID, name), nil)
	}
	return Entry{VideoID: videoID, Speaker: speaker, Segment: segment, Name: name}, nil
}
