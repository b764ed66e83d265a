// Package pathres maps paths found in build output onto the project and
// picks the directories that hold the project's primary sources.
package pathres

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// Normalize returns p relative to root with forward slashes and any leading
// "./" removed. file:// URIs and absolute paths under root are accepted.
// When p cannot be expressed relative to root it is returned unchanged
// (minus a leading "./"); Normalize never fails.
func Normalize(root, p string) string {
	orig := strings.TrimPrefix(p, "./")
	s := strings.TrimPrefix(p, "file://")
	s = filepath.ToSlash(s)
	if strings.HasPrefix(s, "/") {
		s = "/" + strings.TrimLeft(s, "/")
	}
	if filepath.IsAbs(filepath.FromSlash(s)) {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			return orig
		}
		rel, err := filepath.Rel(rootAbs, filepath.FromSlash(s))
		if err != nil {
			return orig
		}
		rel = filepath.ToSlash(rel)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			return orig
		}
		return rel
	}
	for strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	return s
}

// InProject reports whether rel names a location inside the project root.
func InProject(rel string) bool {
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return false
	}
	c := path.Clean(rel)
	return c != ".." && !strings.HasPrefix(c, "../") && c != "."
}

// Exists reports whether rel is an in-project regular file in fs.
func Exists(fs billy.Filesystem, rel string) bool {
	if !InProject(rel) {
		return false
	}
	st, err := fs.Stat(rel)
	return err == nil && st.Mode().IsRegular()
}

// TargetDirs runs the priority search for source directories. pkg is the
// guessed application package ("" when unknown). Tiers are tried from the
// most specific package path to the shallowest ancestor; the existing
// directories of the first tier with any match are returned. Tiers are
// never merged.
func TargetDirs(fs billy.Filesystem, pkg string) []string {
	for _, tier := range tiers(pkg) {
		var found []string
		for _, d := range tier {
			if isDir(fs, d) {
				found = append(found, d)
			}
		}
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

func tiers(pkg string) [][]string {
	var out [][]string
	if pkg != "" {
		pp := strings.ReplaceAll(pkg, ".", "/")
		out = append(out, []string{
			"app/src/main/java/" + pp,
			"app/src/main/kotlin/" + pp,
		})
	}
	return append(out,
		[]string{"app/src/main/java", "app/src/main/kotlin"},
		[]string{"app/src/main"},
		[]string{"app/src"},
	)
}

func isDir(fs billy.Filesystem, p string) bool {
	st, err := fs.Stat(p)
	return err == nil && st.IsDir()
}
