package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"voxcache/internal/config"
	"voxcache/internal/dataset"
	"voxcache/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// statusLine is one labelled verdict in human output.
type statusLine struct {
	label   string
	kind    statusKind
	message string
}

func (l statusLine) render(colorize bool) string {
	text := "[" + l.kind.label() + "]"
	if l.message != "" {
		text += " " + l.message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, l.label+":", text)
	if colorize {
		return l.kind.color() + line + ansiReset
	}
	return line
}

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

// checkStatusLines lists the cache settings followed by one line per
// preflight result.
func checkStatusLines(cfg *config.Config, results []preflight.Result) []statusLine {
	lines := []statusLine{{label: "Segment files", kind: statusInfo, message: "*" + cfg.Cache.Extension}}
	if !cfg.Cache.Lock {
		lines = append(lines, statusLine{label: "Scan lock", kind: statusWarn, message: "disabled (cache.lock = false)"})
	}
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, statusLine{label: r.Name, kind: kind, message: r.Detail})
	}
	return lines
}

func coverageStatus(report dataset.Coverage) statusLine {
	topK := "all"
	if report.TopK > 0 {
		topK = strconv.Itoa(report.TopK)
	}
	kind := statusOK
	if !report.Complete() {
		kind = statusWarn
	}
	message := fmt.Sprintf("top %s videos: %d cached, %d missing, complete: %s",
		topK, report.Cached, report.Missing, yesNo(report.Complete()))
	return statusLine{label: fmt.Sprintf("Speaker %d", report.Speaker), kind: kind, message: message}
}

func verifyStatus(report dataset.VerifyReport) statusLine {
	kind := statusOK
	if !report.OK() {
		kind = statusError
	}
	message := fmt.Sprintf("checked %s segments (%s samples, %.1fs) in %s: %d issue(s)",
		humanize.Comma(int64(report.Checked)),
		humanize.Comma(report.Samples),
		report.Seconds,
		report.Duration.Round(time.Millisecond),
		len(report.Issues))
	return statusLine{label: "Build " + shortBuildID(report.BuildID), kind: kind, message: message}
}

func shortBuildID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func writeStatusLines(out io.Writer, lines ...statusLine) {
	colorize := shouldColorize(out)
	for _, line := range lines {
		fmt.Fprintln(out, line.render(colorize))
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
