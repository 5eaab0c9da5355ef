package segcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"voxcache/internal/logging"
	"voxcache/internal/services"
)

// acquireLock takes the shared scan lock. The returned release func is
// always non-nil. A lock file that cannot be opened (read-only cache, missing
// voxceleb2 directory) downgrades to an unlocked scan with a warning.
func (s *Scanner) acquireLock(ctx context.Context) (func(), error) {
	noop := func() {}
	if !s.opts.Lock {
		return noop, nil
	}

	path := LockPath(s.opts.Root)
	lock := flock.New(path)

	lockCtx := ctx
	if s.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.opts.LockTimeout)
		defer cancel()
	}

	ok, err := lock.TryRLockContext(lockCtx, lockRetryDelay)
	switch {
	case ok:
		return func() {
			if err := lock.Unlock(); err != nil {
				s.logger.Debug("release scan lock failed", logging.String("path", path), logging.Error(err))
			}
		}, nil
	case ctx.Err() != nil:
		return noop, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return noop, services.Wrap(services.ErrCacheBusy, "segcache", "acquire scan lock",
			fmt.Sprintf("%s held by a writer for more than %s", path, s.opts.LockTimeout), nil)
	default:
		logging.WarnWithContext(s.logger, "scan lock unavailable; scanning unlocked", "scan_lock_unavailable",
			logging.String("path", path),
			logging.Error(err),
			logging.Alert("unlocked_scan"),
			logging.String(logging.FieldErrorHint, "make the cache root writable or set cache.lock = false"),
			logging.String(logging.FieldImpact, "concurrent cache writers are not excluded"))
		return noop, nil
	}
}
