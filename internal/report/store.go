package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Store reads and writes named files in the output directory.
type Store struct {
	fs billy.Filesystem
}

// NewStore returns a Store over fs, which must be rooted at the output
// directory (osfs.New(dir) in production, memfs in tests).
func NewStore(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

// FS exposes the underlying filesystem.
func (s *Store) FS() billy.Filesystem { return s.fs }

// Write replaces name with data. The bytes go to a sibling temp file that is
// then renamed over name, so readers never see a half-written report.
func (s *Store) Write(name string, data []byte) error {
	tmp := ".tmp-" + name
	if err := util.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// WriteString is Write for text.
func (s *Store) WriteString(name, text string) error {
	return s.Write(name, []byte(text))
}

// Read returns the current content of name. A missing file yields
// (nil, nil) so callers can treat it as "no previous version".
func (s *Store) Read(name string) ([]byte, error) {
	b, err := util.ReadFile(s.fs, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}
