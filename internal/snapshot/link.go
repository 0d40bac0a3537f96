package snapshot

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type LinkStats struct {
	Created  int
	Replaced int
	Kept     int
}

var _ slog.LogValuer = (*LinkStats)(nil)

func (s LinkStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("created", s.Created),
		slog.Int("replaced", s.Replaced),
		slog.Int("kept", s.Kept),
	)
}

func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)

	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func linkFile(target, link string, s *LinkStats) error {
	fi, err := os.Lstat(link)

	switch {
	case os.IsNotExist(err):
		s.Created++

	case err != nil:
		return err

	case fi.Mode()&fs.ModeSymlink == 0:
		return fmt.Errorf("%w: %s is not a symlink", fs.ErrExist, link)

	default:
		if current, err := os.Readlink(link); err != nil {
			return err
		} else if current == target {
			s.Kept++
			return nil
		}

		if err := os.Remove(link); err != nil {
			return err
		}

		s.Replaced++
	}

	return os.Symlink(target, link)
}

// LinkTree creates a symlink in dst for every regular file in src, using the
// same relative path. Existing links pointing elsewhere are replaced.
func LinkTree(src, dst string) (LinkStats, error) {
	var s LinkStats

	src, err := filepath.Abs(src)
	if err != nil {
		return s, err
	}

	dst, err = filepath.Abs(dst)
	if err != nil {
		return s, err
	}

	if isWithin(src, dst) || isWithin(dst, src) {
		return s, fmt.Errorf("%w: directories %q and %q overlap", os.ErrInvalid, src, dst)
	}

	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}

		link := filepath.Join(dst, rel)

		if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
			return err
		}

		if err := linkFile(p, link, &s); err != nil {
			return fmt.Errorf("linking %q: %w", rel, err)
		}

		return nil
	})

	return s, err
}
