// Package ziputil writes the optional report bundle: a ZIP holding the four
// reports plus a small JSON summary, built so that identical inputs produce
// byte-identical archives.
package ziputil

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FixedZipTime pins every entry's timestamp (1980-01-01 UTC).
var FixedZipTime = time.Unix(315532800, 0).UTC()

// Entry is one file of the bundle.
type Entry struct {
	Name string
	Data []byte
}

// SanitizePath normalizes ZIP entry paths (forward slashes, no drive, no
// leading '/') and drops '.' and '..' segments without escaping the root.
func SanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}

// Bundle writes entries sorted by name, followed by summary.json when
// summary is non-nil.
func Bundle(w io.Writer, entries []Entry, summary any) error {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	zw := zip.NewWriter(w)
	for _, e := range sorted {
		if err := WriteText(zw, e.Name, e.Data); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if summary != nil {
		if err := WriteJSON(zw, "summary.json", summary); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize bundle: %w", err)
	}
	return nil
}

// WriteJSON writes an indented JSON entry with fixed timestamp and mode.
func WriteJSON(zw *zip.Writer, name string, v any) error {
	w, err := create(zw, name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteText writes a raw entry with fixed timestamp and mode.
func WriteText(zw *zip.Writer, name string, data []byte) error {
	w, err := create(zw, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func create(zw *zip.Writer, name string) (io.Writer, error) {
	h := &zip.FileHeader{Name: SanitizePath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = FixedZipTime
	w, err := zw.CreateHeader(h)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return w, nil
}
