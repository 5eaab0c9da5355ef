package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"voxcache/internal/dataset"
)

// column describes one table column. Numeric columns are right-aligned.
type column struct {
	header  string
	numeric bool
	// maxWidth wraps long cells such as decode errors; zero disables.
	maxWidth int
}

var (
	speakerColumns = []column{
		{header: "Speaker", numeric: true},
		{header: "Videos (cached/annotated)", numeric: true},
		{header: "Segments", numeric: true},
		{header: "Seconds", numeric: true},
	}
	segmentColumns = []column{
		{header: "Position", numeric: true},
		{header: "Video"},
		{header: "Segment", numeric: true},
		{header: "Window (s)", numeric: true},
	}
	coverageColumns = []column{
		{header: "Video"},
		{header: "Cached", numeric: true},
		{header: "Missing segments"},
		{header: "Cached (s)", numeric: true},
		{header: "Unannotated"},
	}
	issueColumns = []column{
		{header: "Position", numeric: true},
		{header: "Video"},
		{header: "Segment", numeric: true},
		{header: "Problem"},
		{header: "Error", maxWidth: 48},
	}
)

func renderSpeakerTable(summaries []speakerSummary) string {
	rows := make([][]string, 0, len(summaries))
	var segments int
	var seconds float64
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.Speaker),
			fmt.Sprintf("%d / %d", s.CachedVideos, s.AnnotatedVideo),
			humanize.Comma(int64(s.Segments)),
			fmt.Sprintf("%.1f", s.Seconds),
		})
		segments += s.Segments
		seconds += s.Seconds
	}
	footer := []string{
		fmt.Sprintf("%d speakers", len(summaries)),
		"",
		humanize.Comma(int64(segments)),
		fmt.Sprintf("%.1f", seconds),
	}
	return renderTable(speakerColumns, rows, footer)
}

func renderSegmentTable(segments []segmentRow) string {
	rows := make([][]string, 0, len(segments))
	for _, row := range segments {
		window := "-"
		if row.Start != nil && row.End != nil {
			window = fmt.Sprintf("%.2f-%.2f", *row.Start, *row.End)
		}
		rows = append(rows, []string{
			strconv.Itoa(row.Position),
			row.VideoID,
			fmt.Sprintf("%03d", row.Segment),
			window,
		})
	}
	return renderTable(segmentColumns, rows, nil)
}

func renderCoverageTable(report dataset.Coverage) string {
	rows := make([][]string, 0, len(report.Videos))
	var annotated int
	var cachedSeconds float64
	for _, v := range report.Videos {
		rows = append(rows, []string{
			v.VideoID,
			fmt.Sprintf("%d / %d", len(v.Cached), v.Annotated),
			joinInts(v.Missing),
			fmt.Sprintf("%.1f", v.CachedSeconds),
			joinInts(v.Extra),
		})
		annotated += v.Annotated
		cachedSeconds += v.CachedSeconds
	}
	footer := []string{
		fmt.Sprintf("%d videos", len(report.Videos)),
		fmt.Sprintf("%d / %d", report.Cached, annotated),
		"",
		fmt.Sprintf("%.1f", cachedSeconds),
		"",
	}
	return renderTable(coverageColumns, rows, footer)
}

func renderIssueTable(issues []dataset.VerifyIssue) string {
	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{
			strconv.Itoa(issue.Position),
			issue.VideoID,
			fmt.Sprintf("%03d", issue.Segment),
			issue.Kind,
			issue.Error,
		})
	}
	return renderTable(issueColumns, rows, nil)
}

func renderTable(columns []column, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(tableRow(columns, headers(columns)))
	for _, row := range rows {
		tw.AppendRow(tableRow(columns, row))
	}
	if len(footer) > 0 {
		tw.AppendFooter(tableRow(columns, footer))
	}

	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			AlignFooter:      align,
			WidthMax:         col.maxWidth,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func headers(columns []column) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.header
	}
	return out
}

// tableRow pads or truncates cells to the column count.
func tableRow(columns []column, cells []string) table.Row {
	row := make(table.Row, len(columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
