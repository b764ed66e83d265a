// Package textutil holds small line-oriented helpers shared by the extractor
// and the report writer.
package textutil

import (
	"bytes"
	"strings"
)

// NormalizeUTF8LF converts CRLF and lone CR to LF and replaces invalid UTF-8
// byte sequences with the Unicode replacement character.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("�"))
}

// EnsureTrailingLF appends a single \n if not already present.
// Empty input stays empty.
func EnsureTrailingLF(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// SplitLines splits s into lines without their terminators. A trailing
// newline does not produce an empty last element, so "a\nb\n" and "a\nb"
// both yield two lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// FirstLine returns s up to (not including) the first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Window returns the 1-based inclusive range [center-radius, center+radius]
// clamped to [1, total]. When the clamped range is empty (center beyond the
// end of the file, or total == 0) ok is false.
func Window(center, radius, total int) (start, end int, ok bool) {
	start = max(1, center-radius)
	end = min(total, center+radius)
	if total <= 0 || start > end {
		return 0, 0, false
	}
	return start, end, true
}
