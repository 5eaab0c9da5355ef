package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"voxcache/internal/dataset"
)

type speakerSummary struct {
	Speaker        int     `json:"speaker"`
	AnnotatedVideo int     `json:"annotated_videos"`
	CachedVideos   int     `json:"cached_videos"`
	Segments       int     `json:"segments"`
	Seconds        float64 `json:"annotated_seconds"`
}

func newSpeakersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "speakers",
		Short: "List speakers with cached segments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDataset(cmd, func(_ context.Context, _ *slog.Logger, ds *dataset.Dataset) error {
				summaries, err := summarizeSpeakers(ds)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summaries)
				}
				out := cmd.OutOrStdout()
				if len(summaries) == 0 {
					fmt.Fprintln(out, "No cached segments")
					return nil
				}
				fmt.Fprintln(out, renderSpeakerTable(summaries))
				return nil
			})
		},
	}
}

func summarizeSpeakers(ds *dataset.Dataset) ([]speakerSummary, error) {
	store := ds.Store()
	speakers := ds.Speakers()
	summaries := make([]speakerSummary, 0, len(speakers))
	for _, speaker := range speakers {
		refs, err := ds.AvailableSegments(speaker)
		if err != nil {
			return nil, err
		}
		videos, _ := store.SpeakerVideos(speaker)
		summary := speakerSummary{Speaker: speaker, AnnotatedVideo: len(videos), Segments: len(refs)}
		seen := make(map[string]struct{})
		for _, ref := range refs {
			seen[ref.VideoID] = struct{}{}
			if window, ok := store.Window(ref.VideoID, ref.Segment); ok {
				summary.Seconds += window.Duration()
			}
		}
		summary.CachedVideos = len(seen)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
