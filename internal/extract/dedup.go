package extract

import (
	"strconv"
	"strings"

	"gradle-digest/internal/textutil"
)

// dedupTable is the single seen-set shared by every extraction pass.
type dedupTable struct {
	seen map[string]struct{}
}

func newDedupTable() *dedupTable {
	return &dedupTable{seen: make(map[string]struct{})}
}

// add records key and reports whether it was new.
func (d *dedupTable) add(parts ...string) bool {
	k := strings.Join(parts, "\x00")
	if _, ok := d.seen[k]; ok {
		return false
	}
	d.seen[k] = struct{}{}
	return true
}

// located keys by (path, line, first message line).
func (d *dedupTable) located(loc Location, msg string) bool {
	return d.add("loc", loc.Path, strconv.Itoa(loc.Line), textutil.FirstLine(msg))
}

// block keys by (segment title, first message line).
func (d *dedupTable) block(title, msg string) bool {
	return d.add("blk", title, textutil.FirstLine(msg))
}
