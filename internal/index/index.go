// Package index finds the declarations in Kotlin and Java sources so an
// error line can be attributed to the function or type that contains it.
//
// Extraction is regex based and shallow: good enough to name the enclosing
// declaration in a report, not a parser.
package index

import (
	"path"
	"sort"
	"strings"
)

// Symbol is one declaration. Line is 1-based.
type Symbol struct {
	Name string // qualified, e.g. "com.example.Foo.bar"
	Kind string // "class" | "interface" | "object" | "enum" | "method" | "ctor"
	Line int
}

// Symbols returns the declarations of a source file ordered by line. Files
// in languages without an extractor yield nil.
func Symbols(relPath string, data []byte) []Symbol {
	var syms []Symbol
	switch langByExt(path.Ext(relPath)) {
	case "kt":
		syms = extractKotlin(data)
	case "java":
		syms = extractJava(data)
	default:
		return nil
	}
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Line < syms[j].Line })
	return syms
}

// Enclosing returns the last declaration starting at or before line.
func Enclosing(relPath string, data []byte, line int) (Symbol, bool) {
	var found Symbol
	ok := false
	for _, s := range Symbols(relPath, data) {
		if s.Line > line {
			break
		}
		found, ok = s, true
	}
	return found, ok
}

// joinSym builds "pkg.Type.member", skipping empty parts.
func joinSym(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

// langByExt maps an extension (with or without dot) to an extractor tag.
// Kotlin scripts share the Kotlin extractor.
func langByExt(ext string) string {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".") {
	case "kt", "kts":
		return "kt"
	case "java":
		return "java"
	default:
		return ""
	}
}

// lineIndex converts byte offsets into 1-based line numbers.
type lineIndex []int

func newLineIndex(data []byte) lineIndex {
	idx := lineIndex{0}
	for i, b := range data {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (li lineIndex) lineOf(off int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > off })
}

// typeAt returns the name of the last type declared before line.
func typeAt(types []Symbol, line int) string {
	name := ""
	for _, t := range types {
		if t.Line > line {
			break
		}
		name = t.Name
	}
	return name
}
