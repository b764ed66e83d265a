// Package extract turns a captured build log into an ordered, deduplicated
// list of error records, each tied (when possible) to a project file with a
// code snippet around the cited line.
//
// Extract is a pure function of the log text, a FileSource answering
// questions about project files, and Options. It never fails: unparseable
// input degrades to a generic fallback record.
//
// Pass order:
//   - fast exit when no failure indicator is present (NoErrors sentinel)
//   - location-anchored records from path:line references
//   - block-anchored records from task segments
//   - a single fallback record when neither pass produced anything
package extract

import "gradle-digest/internal/config"

// Kind classifies how a record was produced.
type Kind int

const (
	KindNoErrors Kind = iota // sentinel: the log carried no failure indicator
	KindLocated              // from a path:line reference
	KindBlock                // from a task segment
	KindFallback             // generic "what went wrong" excerpt
)

// Location is a project-relative path and a 1-based line (0 = no line).
type Location struct {
	Path string
	Line int
}

// Snippet is a 1-based inclusive range of source lines.
type Snippet struct {
	Start int
	End   int
	Lines []string
}

// Empty reports whether the snippet carries no lines.
func (s Snippet) Empty() bool { return len(s.Lines) == 0 }

// Record is one extracted error.
type Record struct {
	Kind     Kind
	Location *Location // nil when the error is not tied to a file
	Title    string    // task segment header for block records
	Symbol   string    // enclosing declaration of the cited line, if known
	Message  string    // first line is the headline; further lines are context
	Snippet  Snippet
	Content  *string // full file content; nil when no file is attached
}

// NoErrors is the sentinel record emitted for clean logs.
var NoErrors = Record{Kind: KindNoErrors}

// IsClean reports whether recs is the single NoErrors sentinel.
func IsClean(recs []Record) bool {
	return len(recs) == 1 && recs[0].Kind == KindNoErrors
}

// Options parameterise a run of Extract.
type Options struct {
	// Root is the project root used to relativise absolute log paths.
	Root string

	// Extensions allowed in path:line references (".kt", ".java", ...).
	Extensions []string

	SnippetRadius     int
	ManifestHeadLines int
	FallbackMaxLines  int

	Rules config.Rules
}

// OptionsFrom derives extractor options from a run configuration.
func OptionsFrom(root string, cfg config.Config) Options {
	return Options{
		Root:              root,
		Extensions:        cfg.Extensions,
		SnippetRadius:     cfg.SnippetRadius,
		ManifestHeadLines: cfg.ManifestHeadLines,
		FallbackMaxLines:  cfg.FallbackMaxLines,
		Rules:             cfg.Rules,
	}
}
