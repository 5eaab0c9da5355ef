package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voxcache/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the cache and annotation asset are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			failed := preflight.Failed(results)

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, line := range renderSectionHeader("Preflight", shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				writeStatusLines(out, checkStatusLines(cfg, results)...)
			}
			if len(failed) > 0 {
				return fmt.Errorf("check: %d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
}
