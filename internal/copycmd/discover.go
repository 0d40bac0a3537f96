package copycmd

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hansmi/stack-mirror-tools/internal/layout"
)

// Discover returns all parquet tables below root in lexical order.
func Discover(root string) ([]string, error) {
	found := mapset.NewThreadUnsafeSet[string]()

	if err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), layout.TableExt) {
			found.Add(filepath.Clean(p))
		}

		return nil
	}); err != nil {
		return nil, err
	}

	result := found.ToSlice()

	slices.Sort(result)

	return result, nil
}
