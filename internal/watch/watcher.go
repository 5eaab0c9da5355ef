package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"voxcache/internal/dataset"
	"voxcache/internal/logging"
	"voxcache/internal/services"
)

// Loader opens a new dataset.
type Loader func(ctx context.Context) (*dataset.Dataset, error)

// Handler receives each successfully opened dataset. It owns the dataset and
// is responsible for closing the one it replaces.
type Handler func(ctx context.Context, ds *dataset.Dataset)

// Options configures a Watcher.
type Options struct {
	Dir       string
	Extension string
	Debounce  time.Duration
}

// Watcher drives the rebuild loop.
type Watcher struct {
	opts   Options
	load   Loader
	handle Handler
	logger *slog.Logger
}

// New builds a watcher over opts.Dir.
func New(opts Options, load Loader, handle Handler, logger *slog.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Watcher{
		opts:   opts,
		load:   load,
		handle: handle,
		logger: logging.NewComponentLogger(logger, "watch"),
	}
}

// Run loads an initial dataset, then rebuilds after every quiet period that
// follows a change to a segment file. It returns when ctx is done. An initial
// load failure is returned; later failures are logged and the loop keeps the
// previous dataset.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.opts.Dir); err != nil {
		return services.Wrap(services.ErrConfiguration, "watch", "add directory", w.opts.Dir, err)
	}
	w.logger.Info("watching segment directory",
		logging.String("dir", w.opts.Dir),
		logging.Duration("debounce", w.opts.Debounce))

	if err := w.rebuild(ctx, "initial"); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending int
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("fsnotify event",
				logging.String("file", event.Name),
				logging.String("op", event.Op.String()))
			pending++
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			reason := fmt.Sprintf("%d change(s)", pending)
			pending = 0
			if err := w.rebuild(ctx, reason); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logRebuildFailure(err)
				if services.Recoverable(err) {
					// A busy lock usually clears once the writer finishes.
					timer.Reset(w.opts.Debounce)
					fire = timer.C
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "fsnotify error", "watch_error",
				logging.String("dir", w.opts.Dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "some cache changes may be missed until the next event"))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, w.opts.Extension) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) rebuild(ctx context.Context, reason string) error {
	started := time.Now()
	ds, err := w.load(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("dataset rebuilt",
		logging.String("reason", reason),
		logging.BuildID(ds.BuildID()),
		logging.Int("entries", ds.Len()),
		logging.Duration("elapsed", time.Since(started)))
	w.handle(ctx, ds)
	return nil
}

func (w *Watcher) logRebuildFailure(err error) {
	if services.Recoverable(err) {
		logging.WarnWithContext(w.logger, "dataset rebuild deferred", "watch_rebuild_deferred",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "rebuild retries after the debounce window"),
			logging.String(logging.FieldImpact, "previous dataset stays in use"))
		return
	}
	logging.ErrorWithContext(w.logger, "dataset rebuild failed", "watch_rebuild_failed",
		logging.Error(err),
		logging.ErrorKind(err),
		logging.String(logging.FieldErrorHint, "fix the offending cache file or annotation asset; the next change retries"))
}
