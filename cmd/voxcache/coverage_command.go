package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voxcache/internal/dataset"
)

func newCoverageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <speaker>",
		Short: "Compare a speaker's leading annotated videos with the cache",
		Long: "Reports, for the first preproc.top_k annotated videos of a speaker, which\n" +
			"annotated segments are cached and which are missing.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speaker, err := parseIntArg("speaker", args[0])
			if err != nil {
				return err
			}
			return ctx.withDataset(cmd, func(_ context.Context, _ *slog.Logger, ds *dataset.Dataset) error {
				report, err := ds.Coverage(speaker)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderCoverageTable(report))
				writeStatusLines(out, coverageStatus(report))
				return nil
			})
		},
	}
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
