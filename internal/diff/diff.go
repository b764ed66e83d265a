// Package diff compares the previous and current version of a report so a
// debugging session can see what a fix changed. It produces classic unified
// patches via github.com/pmezard/go-difflib/difflib.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines around each hunk.
const DefaultContext = 3

// Options controls patch generation.
type Options struct {
	// MaxBytes caps len(old)+len(new). Larger inputs produce a placeholder
	// patch. 0 means no limit.
	MaxBytes int

	// Context lines per hunk; 0 selects DefaultContext.
	Context int
}

// Reports diffs the previous content of report name against the current
// one. A nil prev (first run) is diffed against /dev/null. Identical inputs
// yield "".
func Reports(name string, prev, cur []byte, opt Options) string {
	if prev != nil && string(prev) == string(cur) {
		return ""
	}
	from := "a/" + name
	if prev == nil {
		from = "/dev/null"
	}
	return Unified(from, "b/"+name, prev, cur, opt)
}

// Unified produces a unified patch for a↦b.
func Unified(aName, bName string, a, b []byte, opt Options) string {
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		return omitted(aName, bName)
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = DefaultContext
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return omitted(aName, bName)
	}
	return s
}

// splitLinesKeepNL keeps the "\n" on each element, which is what difflib
// expects for well-formed hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
