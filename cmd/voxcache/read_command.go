package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"voxcache/internal/dataset"
	"voxcache/internal/logging"
)

type readOutput struct {
	BuildID  string    `json:"build_id"`
	Position int       `json:"position"`
	Speaker  int       `json:"speaker"`
	VideoID  string    `json:"video_id"`
	Segment  int       `json:"segment"`
	Path     string    `json:"path"`
	Samples  int       `json:"samples"`
	Seconds  float64   `json:"seconds"`
	Peak     float64   `json:"peak"`
	RMS      float64   `json:"rms"`
	Data     []float32 `json:"data,omitempty"`
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	var includeData bool

	cmd := &cobra.Command{
		Use:   "read <position>",
		Short: "Load the segment stored at a cache position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parseIntArg("position", args[0])
			if err != nil {
				return err
			}
			return ctx.withDataset(cmd, func(_ context.Context, logger *slog.Logger, ds *dataset.Dataset) error {
				samples, speaker, err := ds.ReadIndex(position)
				if err != nil {
					return err
				}
				entry, _ := ds.Index().Entry(position)
				result := readOutput{
					BuildID:  ds.BuildID(),
					Position: position,
					Speaker:  speaker,
					VideoID:  entry.VideoID,
					Segment:  entry.Segment,
					Path:     ds.Path(entry.VideoID, entry.Segment),
					Samples:  len(samples),
				}
				if rate := ds.SampleRate(); rate > 0 {
					result.Seconds = float64(len(samples)) / float64(rate)
				}
				result.Peak, result.RMS = levels(samples)
				attrs := append(logging.Entry(position, entry.VideoID, entry.Segment), logging.Int("samples", len(samples)))
				logger.Debug("read segment", logging.Args(attrs...)...)
				if includeData {
					result.Data = samples
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Position: %d (build %s)\n", result.Position, result.BuildID)
				fmt.Fprintf(out, "Speaker:  %d\n", result.Speaker)
				fmt.Fprintf(out, "Segment:  %s #%03d\n", result.VideoID, result.Segment)
				fmt.Fprintf(out, "File:     %s\n", result.Path)
				fmt.Fprintf(out, "Samples:  %s (%.2fs at %d Hz)\n", humanize.Comma(int64(result.Samples)), result.Seconds, ds.SampleRate())
				fmt.Fprintf(out, "Levels:   peak %.4f, rms %.4f\n", result.Peak, result.RMS)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeData, "data", false, "Include raw samples in JSON output")
	return cmd
}

func levels(samples []float32) (peak, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		peak = math.Max(peak, math.Abs(v))
		sum += v * v
	}
	return peak, math.Sqrt(sum / float64(len(samples)))
}
