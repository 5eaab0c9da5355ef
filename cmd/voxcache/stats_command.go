package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"voxcache/internal/dataset"
	"voxcache/internal/segcache"
)

type statsOutput struct {
	BuildID           string         `json:"build_id"`
	SegmentDir        string         `json:"segment_dir"`
	AnnotatedSpeakers int            `json:"annotated_speakers"`
	AnnotatedVideos   int            `json:"annotated_videos"`
	CachedSegments    int            `json:"cached_segments"`
	CachedSpeakers    int            `json:"cached_speakers"`
	CachedVideos      int            `json:"cached_videos"`
	SampleRate        int            `json:"sample_rate"`
	Usage             segcache.Usage `json:"usage"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show annotation, index and disk usage totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withDataset(cmd, func(_ context.Context, _ *slog.Logger, ds *dataset.Dataset) error {
				usage, err := segcache.DiskUsage(cfg.Paths.CacheRoot, cfg.Cache.Extension)
				if err != nil {
					return err
				}
				idx := ds.Index()
				stats := statsOutput{
					BuildID:           ds.BuildID(),
					SegmentDir:        ds.SegmentDir(),
					AnnotatedSpeakers: ds.Store().NumSpeakers(),
					AnnotatedVideos:   ds.Store().NumVideos(),
					CachedSegments:    idx.Len(),
					CachedSpeakers:    idx.SpeakerCount(),
					CachedVideos:      idx.VideoCount(),
					SampleRate:        ds.SampleRate(),
					Usage:             usage,
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Build:     %s\n", stats.BuildID)
				fmt.Fprintf(out, "Cache:     %s\n", stats.SegmentDir)
				fmt.Fprintf(out, "Speakers:  %s cached / %s annotated\n", humanize.Comma(int64(stats.CachedSpeakers)), humanize.Comma(int64(stats.AnnotatedSpeakers)))
				fmt.Fprintf(out, "Videos:    %s cached / %s annotated\n", humanize.Comma(int64(stats.CachedVideos)), humanize.Comma(int64(stats.AnnotatedVideos)))
				fmt.Fprintf(out, "Segments:  %s (%s on disk)\n", humanize.Comma(int64(stats.CachedSegments)), humanize.IBytes(uint64(usage.Bytes)))
				fmt.Fprintf(out, "Disk:      %s free of %s (%.1f%%)\n", humanize.IBytes(usage.FreeBytes), humanize.IBytes(usage.TotalFSBytes), usage.FreeRatio*100)
				return nil
			})
		},
	}
}
