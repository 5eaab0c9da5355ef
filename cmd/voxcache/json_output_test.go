package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestWriteJSONLineIsCompact(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	events := []watchEvent{
		{BuildID: "a", Segments: 3, Speakers: 2, Videos: 2},
		{BuildID: "b", Segments: 4, Speakers: 2, Videos: 2},
	}
	for _, event := range events {
		if err := writeJSONLine(cmd, event); err != nil {
			t.Fatalf("writeJSONLine: %v", err)
		}
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per event, got %q", out.String())
	}
	if lines[0] != `{"build_id":"a","segments":3,"speakers":2,"videos":2}` {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestWriteJSONKeepsPathsUnescaped(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := writeJSON(cmd, readOutput{Path: "/cache/a&b/AAAAAAAAAAA_000.npy"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	requireContains(t, out.String(), `"path": "/cache/a&b/AAAAAAAAAAA_000.npy"`)
}
