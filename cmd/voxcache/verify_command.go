package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"voxcache/internal/dataset"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Decode every indexed segment and report unreadable files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDataset(cmd, func(runCtx context.Context, _ *slog.Logger, ds *dataset.Dataset) error {
				report, err := ds.Verify(runCtx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if err := writeJSON(cmd, report); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					if len(report.Issues) > 0 {
						fmt.Fprintln(out, renderIssueTable(report.Issues))
					}
					writeStatusLines(out, verifyStatus(report))
				}
				if !report.OK() {
					return fmt.Errorf("verify: %d of %d segments unreadable", len(report.Issues), report.Checked)
				}
				return nil
			})
		},
	}
}
