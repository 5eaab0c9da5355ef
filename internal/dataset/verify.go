package dataset

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"voxcache/internal/logging"
	"voxcache/internal/services"
)

// VerifyIssue describes one indexed segment that could not be read.
type VerifyIssue struct {
	Position int    `json:"position"`
	VideoID  string `json:"video_id"`
	Segment  int    `json:"segment"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

// VerifyReport summarizes a full read of the index.
type VerifyReport struct {
	BuildID  string        `json:"build_id"`
	Checked  int           `json:"checked"`
	Samples  int64         `json:"samples"`
	Seconds  float64       `json:"seconds"`
	Issues   []VerifyIssue `json:"issues"`
	Duration time.Duration `json:"duration_ns"`
}

// OK reports whether every indexed segment decoded.
func (r VerifyReport) OK() bool {
	return len(r.Issues) == 0
}

// Verify decodes every indexed segment using the configured scan workers.
// Stale and corrupt segments are collected as issues; any other read error
// aborts verification.
func (d *Dataset) Verify(ctx context.Context) (VerifyReport, error) {
	if err := d.ready(); err != nil {
		return VerifyReport{}, err
	}
	started := time.Now()
	report := VerifyReport{BuildID: d.index.BuildID(), Issues: make([]VerifyIssue, 0)}

	var (
		mu      sync.Mutex
		samples int64
	)
	workers := max(d.opts.Workers, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for pos := 0; pos < d.index.Len(); pos++ {
		if gctx.Err() != nil {
			break
		}
		entry, _ := d.index.Entry(pos)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := d.readEntry(entry)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				samples += int64(len(data))
			case errors.Is(err, services.ErrStaleCacheEntry), errors.Is(err, services.ErrCorruptSegment):
				report.Issues = append(report.Issues, VerifyIssue{
					Position: pos,
					VideoID:  entry.VideoID,
					Segment:  entry.Segment,
					Kind:     services.Kind(err),
					Error:    err.Error(),
				})
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return VerifyReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return VerifyReport{}, err
	}

	sort.Slice(report.Issues, func(i, j int) bool {
		return report.Issues[i].Position < report.Issues[j].Position
	})
	report.Checked = d.index.Len()
	report.Samples = samples
	if d.opts.SampleRate > 0 {
		report.Seconds = float64(samples) / float64(d.opts.SampleRate)
	}
	report.Duration = time.Since(started)

	for _, issue := range report.Issues {
		attrs := append(logging.Entry(issue.Position, issue.VideoID, issue.Segment),
			logging.String(logging.FieldErrorKind, issue.Kind),
			logging.Alert("segment_unreadable"),
			logging.String(logging.FieldErrorHint, "rerun the download pipeline for this video or remove the file"),
			logging.String(logging.FieldImpact, "segment cannot be read"))
		logging.WarnWithContext(d.logger, "segment failed verification", "segment_verify_failed", attrs...)
	}
	d.logger.InfoContext(ctx, "verified segment cache",
		logging.BuildID(report.BuildID),
		logging.Int("checked", report.Checked),
		logging.Int("issues", len(report.Issues)),
		logging.Duration("elapsed", report.Duration))
	return report, nil
}
