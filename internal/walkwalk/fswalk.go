// Package walkwalk provides a deterministic, filterable filesystem walker
// used to gather the project's source files for the content dump, the tree
// listing and the extractor's manifest lookup.
package walkwalk

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// FileInfo is a minimal, deterministic descriptor of a collected file.
type FileInfo struct {
	RelPath string // project-relative path with forward slashes
	Size    int64  // size in bytes
	Ext     string // lowercase extension including dot (e.g., ".kt")
}

// Base returns the file name without directories.
func (f FileInfo) Base() string { return path.Base(f.RelPath) }

type walkState struct {
	exts    map[string]struct{}
	exclude map[string]struct{}
	keep    func(rel string) bool
	files   map[string]FileInfo
}

// CollectFiles walks every root in fsys and returns regular files whose
// extension is in exts. Directories whose base name is in exclude are
// skipped. Missing roots are ignored. The result is deduplicated and sorted
// by RelPath.
func CollectFiles(fsys billy.Filesystem, roots []string, exts, exclude map[string]struct{}) ([]FileInfo, error) {
	ws := &walkState{exts: exts, exclude: exclude, files: make(map[string]FileInfo)}
	for _, r := range roots {
		if err := ws.walk(fsys, r); err != nil {
			return nil, err
		}
	}
	return ws.sorted(), nil
}

// CollectSources collects from the target directories and, when that yields
// nothing, falls back to any file under the project root that has a "src"
// path segment.
func CollectSources(fsys billy.Filesystem, targets []string, exts, exclude map[string]struct{}) ([]FileInfo, error) {
	files, err := CollectFiles(fsys, targets, exts, exclude)
	if err != nil || len(files) > 0 {
		return files, err
	}
	ws := &walkState{exts: exts, exclude: exclude, keep: hasSrcSegment, files: make(map[string]FileInfo)}
	if err := ws.walk(fsys, ""); err != nil {
		return nil, err
	}
	return ws.sorted(), nil
}

// FindByBase returns the sorted relative paths of files named base anywhere
// in the project, skipping excluded directories.
func FindByBase(fsys billy.Filesystem, base string, exclude map[string]struct{}) []string {
	ws := &walkState{
		exclude: exclude,
		keep:    func(rel string) bool { return path.Base(rel) == base },
		files:   make(map[string]FileInfo),
	}
	_ = ws.walk(fsys, "")
	files := ws.sorted()
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

// Paths extracts RelPath from files, preserving order.
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func (ws *walkState) walk(fsys billy.Filesystem, root string) error {
	start := root
	if start == "" {
		start = "."
	}
	if _, err := fsys.Stat(start); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return util.Walk(fsys, start, ws.visit)
}

func (ws *walkState) visit(p string, info fs.FileInfo, err error) error {
	if err != nil {
		// Unreadable entries are skipped rather than aborting the walk.
		if info != nil && info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	rel := relative(p)
	if info.IsDir() {
		if rel != "" && ws.excluded(path.Base(rel)) {
			return filepath.SkipDir
		}
		return nil
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	if !ws.shouldInclude(rel) {
		return nil
	}
	ws.files[rel] = FileInfo{
		RelPath: rel,
		Size:    info.Size(),
		Ext:     strings.ToLower(path.Ext(rel)),
	}
	return nil
}

func (ws *walkState) shouldInclude(rel string) bool {
	if len(ws.exts) > 0 {
		if _, ok := ws.exts[strings.ToLower(path.Ext(rel))]; !ok {
			return false
		}
	}
	if ws.keep != nil && !ws.keep(rel) {
		return false
	}
	return true
}

func (ws *walkState) excluded(base string) bool {
	_, bad := ws.exclude[base]
	return bad
}

func (ws *walkState) sorted() []FileInfo {
	out := make([]FileInfo, 0, len(ws.files))
	for _, f := range ws.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out
}

// relative cleans a walker path into the project-relative slash form.
func relative(p string) string {
	rel := path.Clean(filepath.ToSlash(p))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "." {
		return ""
	}
	return rel
}

func hasSrcSegment(rel string) bool {
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		if seg == "src" {
			return true
		}
	}
	return false
}
