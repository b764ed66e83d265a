package extract

import (
	"bytes"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"gradle-digest/internal/pathres"
	"gradle-digest/internal/textutil"
	"gradle-digest/internal/walkwalk"
)

// FileSource answers the extractor's questions about project files.
// Paths are project-relative with forward slashes.
type FileSource interface {
	Exists(rel string) bool
	Read(rel string) ([]byte, error)
	FindByBase(base string) []string
}

// BillySource is a FileSource over a billy filesystem rooted at the project.
type BillySource struct {
	FS      billy.Filesystem
	Exclude map[string]struct{}
}

// Exists reports whether rel is a regular file inside the project.
func (s BillySource) Exists(rel string) bool { return pathres.Exists(s.FS, rel) }

// Read returns the file content.
func (s BillySource) Read(rel string) ([]byte, error) { return util.ReadFile(s.FS, rel) }

// FindByBase lists project files named base, skipping excluded directories.
func (s BillySource) FindByBase(base string) []string {
	return walkwalk.FindByBase(s.FS, base, s.Exclude)
}

// sniffLen bounds the binary check, like git's heuristic.
const sniffLen = 8000

// readText loads rel as normalised text. Unreadable or binary files yield
// ok=false; callers substitute empty content.
func readText(src FileSource, rel string) (string, bool) {
	b, err := src.Read(rel)
	if err != nil {
		return "", false
	}
	if bytes.IndexByte(b[:min(len(b), sniffLen)], 0) >= 0 {
		return "", false
	}
	return string(textutil.NormalizeUTF8LF(b)), true
}

// attach reads rel and builds the snippet window around center. When the
// file cannot be read the snippet is empty and content is "" (not nil), so
// the record still names the file.
func attach(src FileSource, rel string, center, radius int) (Snippet, *string) {
	text, ok := readText(src, rel)
	if !ok {
		empty := ""
		return Snippet{}, &empty
	}
	return window(textutil.SplitLines(text), center, radius), &text
}

func window(lines []string, center, radius int) Snippet {
	start, end, ok := textutil.Window(center, radius, len(lines))
	if !ok {
		return Snippet{}
	}
	return Snippet{Start: start, End: end, Lines: append([]string(nil), lines[start-1:end]...)}
}
