package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gradle-digest/internal/index"
	"gradle-digest/internal/pathres"
)

// contextLines is how many log lines after the matched one are appended to
// the message.
const contextLines = 2

// reErrorMarker finds the "error:" label compilers put before the message.
var reErrorMarker = regexp.MustCompile(`(?i)error:`)

// ref is one surviving path:line reference.
type ref struct {
	raw  string // token as it appeared in the log
	path string // project-relative
	line int
	at   int // log line where the reference first appeared
}

// refPattern builds the <path-token>.<ext>:<line> matcher for the allowed
// extensions. Longer extensions come first so ".kts" wins over ".kt".
func refPattern(exts []string) *regexp.Regexp {
	alts := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
		if e != "" {
			alts = append(alts, regexp.QuoteMeta(e))
		}
	}
	if len(alts) == 0 {
		alts = []string{"kt", "java"}
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return regexp.MustCompile(`([\w./@$~+-]+\.(?i:` + strings.Join(alts, "|") + `)):(\d+)`)
}

// references collects the distinct in-project references in first-seen
// order. Every log line carrying one is marked consumed, repeats included.
func (s *scan) references() []ref {
	var out []ref
	seen := make(map[string]struct{})
	for i, ln := range s.lines {
		for _, m := range s.refRe.FindAllStringSubmatch(ln, -1) {
			rel := pathres.Normalize(s.opts.Root, m[1])
			if !s.src.Exists(rel) {
				continue
			}
			n, err := strconv.Atoi(m[2])
			if err != nil || n < 1 {
				continue
			}
			s.consumed[i] = struct{}{}
			key := rel + ":" + m[2]
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, ref{raw: m[0], path: rel, line: n, at: i})
		}
	}
	return out
}

// locatedPass emits one record per distinct reference whose file exists.
func (s *scan) locatedPass() []Record {
	var out []Record
	for _, r := range s.references() {
		msg := cleanMessage(s.lines[r.at], r.raw)
		if extra := s.context(r.at); len(extra) > 0 {
			msg += "\n" + strings.Join(extra, "\n")
		}
		loc := Location{Path: r.path, Line: r.line}
		if !s.seen.located(loc, msg) {
			continue
		}
		snip, content := attach(s.src, r.path, r.line, s.opts.SnippetRadius)
		rec := Record{
			Kind:     KindLocated,
			Location: &loc,
			Message:  msg,
			Snippet:  snip,
			Content:  content,
		}
		if sym, ok := index.Enclosing(r.path, []byte(*content), r.line); ok {
			rec.Symbol = sym.Name
		}
		out = append(out, rec)
	}
	return out
}

// context returns up to contextLines lines following idx (javac's echoed
// source line and caret, for instance). It stops at a blank line or at a
// line that starts another located error or a task segment.
func (s *scan) context(idx int) []string {
	var out []string
	for i := idx + 1; i < len(s.lines) && len(out) < contextLines; i++ {
		ln := strings.TrimRight(s.lines[i], " \t")
		if strings.TrimSpace(ln) == "" {
			break
		}
		if s.refRe.MatchString(ln) || s.hasErrorPrefix(i) || s.isHeader(i) {
			break
		}
		out = append(out, ln)
		s.consumed[i] = struct{}{}
	}
	return out
}

// cleanMessage strips everything up to and including "error:" or, when the
// line has no such label, everything up to and including the reference token
// and its trailing ":col" and ":" separators.
func cleanMessage(line, token string) string {
	if loc := reErrorMarker.FindStringIndex(line); loc != nil {
		if msg := strings.TrimSpace(line[loc[1]:]); msg != "" {
			return msg
		}
	}
	if i := strings.Index(line, token); i >= 0 {
		if msg := strings.TrimSpace(skipColumns(line[i+len(token):])); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(line)
}

// skipColumns drops leading ":<digits>" groups and one ":" separator.
func skipColumns(s string) string {
	for len(s) > 1 && s[0] == ':' && isDigit(s[1]) {
		j := 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		s = s[j:]
	}
	if t := strings.TrimLeft(s, " \t"); strings.HasPrefix(t, ":") {
		return t[1:]
	}
	return s
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
