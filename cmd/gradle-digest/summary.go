package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"gradle-digest/internal/digest"
	"gradle-digest/internal/report"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// printSummary writes a short human-readable overview of the run.
func printSummary(w io.Writer, sum *digest.Summary, colored bool) {
	for _, c := range []*color.Color{okColor, failColor, skipColor, dimColor} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if sum.Project.Package() != "" {
		fmt.Fprintf(w, "project  %s\n", sum.Project.Package())
	}
	fmt.Fprintf(w, "sources  %d file(s)\n", sum.Sources)
	status(w, "build   ", sum.BuildErrors, sum.BuildSkipped, "error(s)")
	status(w, "sync    ", sum.SyncErrors, sum.SyncSkipped, "error(s)")
	if sum.ErrorsDiff {
		dimColor.Fprintf(w, "         build errors changed since last run, see %s\n", digest.ScratchErrorsDiff)
	}
	for _, f := range sum.Failures {
		failColor.Fprintf(w, "internal %s\n", f)
	}
	fmt.Fprintf(w, "reports  %s\n", sum.OutputDir)
	for _, name := range report.Names {
		dimColor.Fprintf(w, "         %s\n", filepath.Join(sum.OutputDir, name))
	}
}

func status(w io.Writer, label string, n int, skipped bool, unit string) {
	fmt.Fprintf(w, "%s ", label)
	switch {
	case skipped:
		skipColor.Fprintln(w, "skipped")
	case n == 0:
		okColor.Fprintln(w, "ok")
	default:
		failColor.Fprintf(w, "%d %s\n", n, unit)
	}
}
