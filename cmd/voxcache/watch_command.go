package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"voxcache/internal/annotation"
	"voxcache/internal/dataset"
	"voxcache/internal/watch"
)

type watchEvent struct {
	BuildID  string `json:"build_id"`
	Segments int    `json:"segments"`
	Speakers int    `json:"speakers"`
	Videos   int    `json:"videos"`
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the index whenever the segment directory changes",
		Long: "Opens the dataset, then rebuilds it after each burst of changes to the\n" +
			"segment directory and prints one summary line per build. Runs until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, logger, err := ctx.commandScope(cmd)
			if err != nil {
				return err
			}
			store, err := annotation.Load(cfg.Paths.AnnotationAsset, logger)
			if err != nil {
				return err
			}

			var (
				mu      sync.Mutex
				current *dataset.Dataset
			)
			defer func() {
				mu.Lock()
				defer mu.Unlock()
				if current != nil {
					current.Close()
				}
			}()

			out := cmd.OutOrStdout()
			load := func(loadCtx context.Context) (*dataset.Dataset, error) {
				return dataset.Open(loadCtx, dataset.OptionsFromConfig(cfg), store, logger)
			}
			handle := func(_ context.Context, ds *dataset.Dataset) {
				mu.Lock()
				prev := current
				current = ds
				mu.Unlock()
				if prev != nil {
					prev.Close()
				}
				idx := ds.Index()
				event := watchEvent{
					BuildID:  ds.BuildID(),
					Segments: idx.Len(),
					Speakers: idx.SpeakerCount(),
					Videos:   idx.VideoCount(),
				}
				if ctx.jsonOutput() {
					_ = writeJSONLine(cmd, event)
					return
				}
				fmt.Fprintf(out, "build %s: %d segments, %d speakers, %d videos\n",
					event.BuildID, event.Segments, event.Speakers, event.Videos)
			}

			w := watch.New(watch.Options{
				Dir:       cfg.SegmentDir(),
				Extension: cfg.Cache.Extension,
				Debounce:  cfg.WatchDebounce(),
			}, load, handle, logger)
			return w.Run(runCtx)
		},
	}
}
