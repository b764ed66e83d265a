package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"gradle-digest/internal/textutil"
)

// scan is the per-call state threaded through the passes.
type scan struct {
	opts   Options
	src    FileSource
	lines  []string
	folded []string // case-folded copy of lines for phrase matching
	fold   cases.Caser
	seen   *dedupTable

	indicators  []string // folded Rules.Indicators
	errPrefixes []string // folded Rules.ErrorPrefixes
	refRe       *regexp.Regexp

	// consumed marks log lines already reported by the located pass, so the
	// block pass does not repeat them.
	consumed map[int]struct{}
}

// Extract runs every pass over log and returns the records in pass order.
// A log without failure indicators yields exactly []Record{NoErrors}.
func Extract(log string, src FileSource, opts Options) []Record {
	s := newScan(log, src, opts)
	if !s.hasIndicator() {
		return []Record{NoErrors}
	}

	recs := s.locatedPass()
	recs = append(recs, s.blockPass()...)
	if len(recs) > 0 {
		return recs
	}
	return []Record{s.fallback()}
}

func newScan(log string, src FileSource, opts Options) *scan {
	if opts.SnippetRadius <= 0 {
		opts.SnippetRadius = 20
	}
	if opts.ManifestHeadLines <= 0 {
		opts.ManifestHeadLines = 120
	}
	if opts.FallbackMaxLines <= 0 {
		opts.FallbackMaxLines = 80
	}
	s := &scan{
		opts:     opts,
		src:      src,
		lines:    textutil.SplitLines(string(textutil.NormalizeUTF8LF([]byte(log)))),
		fold:     cases.Fold(),
		seen:     newDedupTable(),
		consumed: make(map[int]struct{}),
	}
	s.refRe = refPattern(opts.Extensions)
	s.indicators = s.foldAll(opts.Rules.Indicators)
	s.errPrefixes = s.foldAll(opts.Rules.ErrorPrefixes)
	s.folded = make([]string, len(s.lines))
	for i, ln := range s.lines {
		s.folded[i] = s.fold.String(ln)
	}
	return s
}

// hasIndicator is the fast-exit check: any indicator substring anywhere, or
// a line starting with a compiler error prefix.
func (s *scan) hasIndicator() bool {
	for i, f := range s.folded {
		if containsAny(f, s.indicators) {
			return true
		}
		if s.hasErrorPrefix(i) {
			return true
		}
	}
	return false
}

// hasErrorPrefix reports whether log line i starts (after indentation) with
// one of the compiler error prefixes.
func (s *scan) hasErrorPrefix(i int) bool {
	f := strings.TrimLeft(s.folded[i], " \t")
	for _, p := range s.errPrefixes {
		if strings.HasPrefix(f, p) {
			return true
		}
	}
	return false
}

// fallback builds the generic record from lines carrying what-went-wrong
// markers, capped at FallbackMaxLines.
func (s *scan) fallback() Record {
	markers := s.foldAll(s.opts.Rules.FallbackMarkers)
	var picked []string
	for i, f := range s.folded {
		if len(picked) >= s.opts.FallbackMaxLines {
			break
		}
		if containsAny(f, markers) {
			picked = append(picked, strings.TrimRight(s.lines[i], " \t"))
		}
	}
	msg := strings.Join(picked, "\n")
	if msg == "" {
		msg = "Build failed; no error details could be extracted from the log."
	}
	return Record{Kind: KindFallback, Message: msg}
}

func (s *scan) foldAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" {
			out = append(out, s.fold.String(it))
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
