package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"voxcache/internal/dataset"
	"voxcache/internal/preflight"
	"voxcache/internal/testsupport"
)

func TestStatusLineRenderNoColor(t *testing.T) {
	line := statusLine{label: "Scan lock", kind: statusError, message: "held by a cache writer"}
	got := line.render(false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Scan lock:", "[ERROR] held by a cache writer")
	if got != want {
		t.Fatalf("render mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestStatusLineRenderWithColor(t *testing.T) {
	got := statusLine{label: "Cache root", kind: statusOK, message: "read ok"}.render(true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestCheckStatusLines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Cache.Lock = false
	results := []preflight.Result{
		{Name: "Annotation asset", Passed: true, Detail: "2 speakers"},
		{Name: "Segment directory", Passed: false, Detail: "missing"},
	}

	lines := checkStatusLines(cfg, results)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %+v", len(lines), lines)
	}
	if lines[0].kind != statusInfo || lines[0].message != "*.npy" {
		t.Fatalf("unexpected extension line %+v", lines[0])
	}
	if lines[1].label != "Scan lock" || lines[1].kind != statusWarn {
		t.Fatalf("expected disabled lock warning, got %+v", lines[1])
	}
	if lines[2].kind != statusOK || lines[3].kind != statusError {
		t.Fatalf("result kinds = %v, %v", lines[2].kind, lines[3].kind)
	}
}

func TestCoverageStatus(t *testing.T) {
	complete := coverageStatus(dataset.Coverage{Speaker: 3, TopK: 2, Cached: 4})
	if complete.kind != statusOK || complete.label != "Speaker 3" {
		t.Fatalf("unexpected status %+v", complete)
	}
	if !strings.Contains(complete.message, "top 2 videos: 4 cached, 0 missing, complete: yes") {
		t.Fatalf("unexpected message %q", complete.message)
	}

	partial := coverageStatus(dataset.Coverage{Speaker: 0, Cached: 1, Missing: 2})
	if partial.kind != statusWarn || !strings.Contains(partial.message, "top all videos") {
		t.Fatalf("unexpected status %+v", partial)
	}
}

func TestVerifyStatus(t *testing.T) {
	report := dataset.VerifyReport{
		BuildID:  "0123456789abcdef",
		Checked:  1200,
		Samples:  48000,
		Seconds:  3,
		Duration: 1500 * time.Microsecond,
	}
	line := verifyStatus(report)
	if line.kind != statusOK || line.label != "Build 01234567" {
		t.Fatalf("unexpected status %+v", line)
	}
	requireContains(t, line.message, "checked 1,200 segments (48,000 samples, 3.0s)")
	requireContains(t, line.message, "0 issue(s)")

	report.Issues = []dataset.VerifyIssue{{Position: 0, Kind: "corrupt_segment"}}
	if verifyStatus(report).kind != statusError {
		t.Fatal("expected error status with issues")
	}
}

func TestRenderCoverageTableTotals(t *testing.T) {
	report := dataset.Coverage{
		Speaker: 0,
		Videos: []dataset.VideoCoverage{
			{VideoID: "AAAAAAAAAAA", Annotated: 2, Cached: []int{1}, Missing: []int{0}, CachedSeconds: 1},
			{VideoID: "CCCCCCCCCCC", Annotated: 1, Cached: []int{0}, Missing: []int{}, Extra: []int{4}, CachedSeconds: 2.5},
		},
		Cached:  2,
		Missing: 1,
	}
	out := renderCoverageTable(report)
	requireContains(t, out, "VIDEO")
	requireContains(t, out, "AAAAAAAAAAA")
	requireContains(t, out, "1 / 2")
	requireContains(t, out, "2 / 3")
	requireContains(t, out, "3.5")
}

func TestRenderSpeakerTableTotals(t *testing.T) {
	out := renderSpeakerTable([]speakerSummary{
		{Speaker: 0, AnnotatedVideo: 1, CachedVideos: 1, Segments: 1200, Seconds: 2},
		{Speaker: 17, AnnotatedVideo: 3, CachedVideos: 2, Segments: 3, Seconds: 1.5},
	})
	requireContains(t, out, "SPEAKER")
	requireContains(t, out, "1,200")
	requireContains(t, out, "1,203")
	requireContains(t, out, "3.5")
}

func TestRenderSegmentTableWindows(t *testing.T) {
	start, end := 2.0, 3.0
	out := renderSegmentTable([]segmentRow{
		{Position: 1, VideoID: "AAAAAAAAAAA", Segment: 1, Start: &start, End: &end},
		{Position: 2, VideoID: "BBBBBBBBBBB", Segment: 7},
	})
	requireContains(t, out, "2.00-3.00")
	requireContains(t, out, "007")
}

func TestRenderTableNoColumns(t *testing.T) {
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty render for no columns")
	}
}

func TestLevels(t *testing.T) {
	peak, rms := levels([]float32{-1, 1})
	if peak != 1 || rms != 1 {
		t.Fatalf("levels = %v, %v", peak, rms)
	}
	if peak, rms := levels(nil); peak != 0 || rms != 0 {
		t.Fatal("expected zero levels for empty input")
	}
}
