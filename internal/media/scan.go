package media

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Listing is the browsable content of one directory.
type Listing struct {
	Dir   string   // absolute
	Dirs  []string // absolute subdirectory paths, parent first when there is one
	Files []string // absolute paths of playable files
}

// ScanDir lists dir's subdirectories and playable files, each sorted
// case-insensitively. Hidden entries are skipped.
func ScanDir(dir string) (Listing, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Listing{}, fmt.Errorf("resolving %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Listing{}, fmt.Errorf("reading directory: %w", err)
	}

	visible := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !strings.HasPrefix(e.Name(), ".")
	})
	dirs, files := lo.FilterReject(visible, func(e os.DirEntry, _ int) bool {
		return isDir(abs, e)
	})
	files = lo.Filter(files, func(e os.DirEntry, _ int) bool {
		return IsSupportedExt(filepath.Ext(e.Name()))
	})

	l := Listing{
		Dir:   abs,
		Dirs:  joinSorted(abs, dirs),
		Files: joinSorted(abs, files),
	}
	if parent := filepath.Dir(abs); parent != abs {
		l.Dirs = append([]string{parent}, l.Dirs...)
	}
	return l, nil
}

// isDir follows symlinks so linked folders can be browsed.
func isDir(dir string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

func joinSorted(dir string, entries []os.DirEntry) []string {
	names := lo.Map(entries, func(e os.DirEntry, _ int) string { return e.Name() })
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return lo.Map(names, func(n string, _ int) string { return filepath.Join(dir, n) })
}
