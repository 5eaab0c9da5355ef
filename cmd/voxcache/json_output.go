package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// writeJSON prints one indented document, used by commands that report once.
func writeJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v, "  ")
}

// writeJSONLine prints one compact object per line so `watch --json` output
// can be consumed as a stream of rebuild events.
func writeJSONLine(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v, "")
}

func encodeJSON(w io.Writer, v any, indent string) error {
	enc := json.NewEncoder(w)
	// Segment paths and error strings are printed verbatim.
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(v)
}
