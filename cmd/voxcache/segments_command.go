package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"voxcache/internal/dataset"
	"voxcache/internal/logging"
)

type segmentRow struct {
	Position int      `json:"position"`
	VideoID  string   `json:"video_id"`
	Segment  int      `json:"segment"`
	Start    *float64 `json:"start,omitempty"`
	End      *float64 `json:"end,omitempty"`
}

type segmentsOutput struct {
	BuildID  string       `json:"build_id"`
	Speaker  int          `json:"speaker"`
	Segments []segmentRow `json:"segments,omitempty"`
	Position []int        `json:"positions,omitempty"`
}

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	var positionsOnly bool

	cmd := &cobra.Command{
		Use:   "segments <speaker>",
		Short: "List the cached segments of a speaker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speaker, err := parseIntArg("speaker", args[0])
			if err != nil {
				return err
			}
			return ctx.withDataset(cmd, func(_ context.Context, logger *slog.Logger, ds *dataset.Dataset) error {
				logger = logger.With(logging.Speaker(speaker))
				out := cmd.OutOrStdout()

				if positionsOnly {
					positions, err := ds.AvailablePositions(speaker)
					if err != nil {
						return err
					}
					if ctx.jsonOutput() {
						return writeJSON(cmd, segmentsOutput{BuildID: ds.BuildID(), Speaker: speaker, Position: positions})
					}
					for _, pos := range positions {
						fmt.Fprintln(out, pos)
					}
					return nil
				}

				refs, err := ds.AvailableSegments(speaker)
				if err != nil {
					return err
				}
				rows := make([]segmentRow, 0, len(refs))
				for _, ref := range refs {
					pos, _ := ds.Index().Position(ref.VideoID, ref.Segment)
					row := segmentRow{Position: pos, VideoID: ref.VideoID, Segment: ref.Segment}
					if window, ok := ds.Store().Window(ref.VideoID, ref.Segment); ok {
						start, end := window.Start, window.End
						row.Start, row.End = &start, &end
					}
					rows = append(rows, row)
				}
				logger.Debug("listed segments", logging.Int("segments", len(rows)))
				if ctx.jsonOutput() {
					return writeJSON(cmd, segmentsOutput{BuildID: ds.BuildID(), Speaker: speaker, Segments: rows})
				}
				fmt.Fprintln(out, renderSegmentTable(rows))
				fmt.Fprintf(out, "Build: %s\n", ds.BuildID())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&positionsOnly, "positions", false, "Print cache positions only")
	return cmd
}
