package extract

import (
	"regexp"
	"strings"

	"gradle-digest/internal/pathres"
	"gradle-digest/internal/textutil"
)

const manifestName = "AndroidManifest.xml"

// preferredManifest is tried first when the segment names no manifest path.
const preferredManifest = "app/src/main/" + manifestName

var reManifestPath = regexp.MustCompile(`[\w./@$~+-]*` + regexp.QuoteMeta(manifestName))

// segment is a run of log lines opened by a task header.
type segment struct {
	title string
	start int // header line index
	end   int // exclusive
}

func (s *scan) isHeader(i int) bool {
	h := s.opts.Rules.TaskHeader
	return h != "" && strings.HasPrefix(s.lines[i], h)
}

func (s *scan) segments() []segment {
	var out []segment
	for i := range s.lines {
		if !s.isHeader(i) {
			continue
		}
		if n := len(out); n > 0 {
			out[n-1].end = i
		}
		out = append(out, segment{title: strings.TrimSpace(s.lines[i]), start: i, end: len(s.lines)})
	}
	return out
}

// blockPass emits one record per task segment that contains a real error
// line, keyed by (title, first error line).
func (s *scan) blockPass() []Record {
	wanted := s.foldAll(s.opts.Rules.RealErrorPhrases)
	noise := s.foldAll(s.opts.Rules.NoisePhrases)

	var out []Record
	for _, seg := range s.segments() {
		first := -1
		for i := seg.start + 1; i < seg.end; i++ {
			if _, done := s.consumed[i]; done {
				continue
			}
			// path:line lines belong to the located pass, which already
			// reported or rejected them.
			if s.refRe.MatchString(s.lines[i]) {
				continue
			}
			f := s.folded[i]
			if containsAny(f, wanted) && !containsAny(f, noise) {
				first = i
				break
			}
		}
		if first < 0 {
			continue
		}
		msg := strings.TrimSpace(s.lines[first])
		if !s.seen.block(seg.title, msg) {
			continue
		}
		rec := Record{Kind: KindBlock, Title: seg.title, Message: msg}
		s.attachManifest(&rec, seg)
		out = append(out, rec)
	}
	return out
}

// attachManifest picks the manifest named in the segment, else one found in
// the project, and centres the snippet on the first marker line. Projects
// without a manifest leave rec untouched.
func (s *scan) attachManifest(rec *Record, seg segment) {
	rel := s.manifestFromSegment(seg)
	if rel == "" {
		rel = s.manifestFromProject()
	}
	if rel == "" {
		return
	}
	text, ok := readText(s.src, rel)
	if !ok {
		empty := ""
		rec.Location = &Location{Path: rel}
		rec.Content = &empty
		return
	}
	lines := textutil.SplitLines(text)
	markers := s.foldAll(s.opts.Rules.ManifestMarkers)
	line := 0
	for i, ln := range lines {
		if containsAny(s.fold.String(ln), markers) {
			line = i + 1
			break
		}
	}
	if line > 0 {
		rec.Snippet = window(lines, line, s.opts.SnippetRadius)
	} else {
		n := min(len(lines), s.opts.ManifestHeadLines)
		if n > 0 {
			rec.Snippet = Snippet{Start: 1, End: n, Lines: append([]string(nil), lines[:n]...)}
		}
	}
	rec.Location = &Location{Path: rel, Line: line}
	rec.Content = &text
}

func (s *scan) manifestFromSegment(seg segment) string {
	for i := seg.start; i < seg.end; i++ {
		for _, m := range reManifestPath.FindAllString(s.lines[i], -1) {
			rel := pathres.Normalize(s.opts.Root, m)
			if s.src.Exists(rel) {
				return rel
			}
		}
	}
	return ""
}

func (s *scan) manifestFromProject() string {
	if s.src.Exists(preferredManifest) {
		return preferredManifest
	}
	if found := s.src.FindByBase(manifestName); len(found) > 0 {
		return found[0]
	}
	return ""
}
