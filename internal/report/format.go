// Package report renders the digest's four plain-text reports and writes
// them into the output directory.
//
// Every report is a sequence of blocks, each followed by Sep, and the whole
// report ends with a line holding a single ".". An empty report is its
// sentinel line plus the terminator. Rendering is deterministic: identical
// input yields byte-identical output.
package report

import (
	"path"
	"strconv"
	"strings"

	"gradle-digest/internal/extract"
	"gradle-digest/internal/textutil"
)

// Report file names inside the output directory.
const (
	FileContent = "project_content.txt"
	FileErrors  = "build_errors.txt"
	FileSync    = "sync_errors.txt"
	FileTree    = "source_tree.txt"
)

// Names lists the report files in stage order.
var Names = []string{FileContent, FileErrors, FileSync, FileTree}

// Sep is the block separator line.
var Sep = strings.Repeat("-", 40)

// Terminator is the last line of every report.
const Terminator = "."

// Sentinel lines for empty reports.
const (
	NoBuildErrors = "No build errors found."
	NoSyncErrors  = "No sync errors found."
	NoSources     = "No source files found."
)

const notAvailable = "(not available)"

// ContentFile is one entry of the content dump.
type ContentFile struct {
	Path    string
	Content string
}

type builder struct{ strings.Builder }

func (b *builder) line(parts ...string) {
	for _, p := range parts {
		b.WriteString(p)
	}
	b.WriteByte('\n')
}

// text writes s, making sure it ends with a newline.
func (b *builder) text(s string) {
	b.WriteString(textutil.EnsureTrailingLF(s))
}

func (b *builder) end() string {
	b.line(Terminator)
	return b.String()
}

func sentinel(s string) string {
	return s + "\n" + Terminator + "\n"
}

// Content renders the source content dump.
func Content(files []ContentFile) string {
	if len(files) == 0 {
		return sentinel(NoSources)
	}
	var b builder
	for _, f := range files {
		b.line("=== FILE START ===")
		b.line("Path: ", f.Path)
		b.line("File: ", path.Base(f.Path))
		b.line("Content:")
		b.text(f.Content)
		b.line("=== FILE END ===")
		b.line(Sep)
	}
	return b.end()
}

// Errors renders extractor records. A clean result renders the sentinel.
func Errors(recs []extract.Record) string {
	if len(recs) == 0 || extract.IsClean(recs) {
		return sentinel(NoBuildErrors)
	}
	var b builder
	for _, r := range recs {
		if r.Kind == extract.KindNoErrors {
			continue
		}
		b.line("Error in: ", origin(r))
		if r.Location != nil && r.Location.Line > 0 {
			b.line("Line: ", strconv.Itoa(r.Location.Line))
		}
		if r.Symbol != "" {
			b.line("Symbol: ", r.Symbol)
		}
		if r.Location != nil && r.Title != "" {
			b.line("Task: ", r.Title)
		}
		b.line("Message: ", textutil.FirstLine(r.Message))
		if _, rest, ok := strings.Cut(r.Message, "\n"); ok {
			b.text(rest)
		}
		b.line("Code:")
		if r.Snippet.Empty() {
			b.line(notAvailable)
		}
		for i, ln := range r.Snippet.Lines {
			b.line(strconv.Itoa(r.Snippet.Start+i), ": ", ln)
		}
		b.line("Full Content:")
		if r.Content == nil || *r.Content == "" {
			b.line(notAvailable)
		} else {
			b.text(*r.Content)
		}
		b.line(Sep)
	}
	return b.end()
}

// origin names where a record came from: its file, else its task segment.
func origin(r extract.Record) string {
	switch {
	case r.Location != nil:
		return r.Location.Path
	case r.Title != "":
		return r.Title
	default:
		return "unknown"
	}
}

// Sync renders the sync checker's failure lines.
func Sync(lines []string) string {
	if len(lines) == 0 {
		return sentinel(NoSyncErrors)
	}
	var b builder
	for _, ln := range lines {
		b.line("Sync Error: ", ln)
		b.line(Sep)
	}
	return b.end()
}

// Tree renders the source tree listing, one path per line.
func Tree(paths []string) string {
	if len(paths) == 0 {
		return sentinel(NoSources)
	}
	var b builder
	for _, p := range paths {
		b.line(p)
	}
	return b.end()
}
