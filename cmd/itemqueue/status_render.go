package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const statusLabelWidth = 20

// statusReport accumulates the lines of the status command, colouring
// check outcomes only when writing to a terminal.
type statusReport struct {
	lines    []string
	colorize bool
}

func newStatusReport(out io.Writer) *statusReport {
	return &statusReport{colorize: isTerminal(out)}
}

func (r *statusReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	r.lines = append(r.lines, r.paint(ansiBold, strings.TrimSpace(title)))
}

func (r *statusReport) value(label, value string) {
	r.lines = append(r.lines, fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", value))
}

func (r *statusReport) check(label string, passed bool, detail string) {
	mark, color := "ok", ansiGreen
	if !passed {
		mark, color = "FAIL", ansiRed
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", r.paint(color, mark))
	if detail != "" {
		line += "  " + detail
	}
	r.lines = append(r.lines, line)
}

func (r *statusReport) paint(color, s string) string {
	if !r.colorize {
		return s
	}
	return color + s + ansiReset
}

func (r *statusReport) String() string {
	return strings.Join(r.lines, "\n")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
