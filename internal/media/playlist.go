package media

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// ParseLocalPlaylist parses a local .m3u/.m3u8/.pls file into local path entries.
// Relative entries are resolved against the playlist file directory; URL
// entries are skipped.
func ParseLocalPlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	absPlaylistPath, err := filepath.Abs(path)
	if err != nil {
		absPlaylistPath = path
	}

	data, err := os.ReadFile(absPlaylistPath)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	baseDir := filepath.Dir(absPlaylistPath)
	text := strings.TrimPrefix(string(data), "\uFEFF")
	scanner := bufio.NewScanner(strings.NewReader(text))

	switch ext {
	case ".pls":
		return parsePLS(scanner, baseDir), nil
	default:
		return parseM3U(scanner, baseDir), nil
	}
}

// FilterPlayableLocalPaths keeps only existing, non-directory, supported
// media files and makes them absolute.
func FilterPlayableLocalPaths(paths []string) []string {
	playable := lo.Filter(paths, func(p string, _ int) bool {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir() && IsSupportedExt(filepath.Ext(p))
	})
	return lo.Map(playable, func(p string, _ int) string {
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	})
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	entries := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if p, ok := resolvePlaylistEntryPath(line, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	entries := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:eq]))
		val := strings.TrimSpace(line[eq+1:])
		if val == "" || !isPLSFileKey(key) {
			continue
		}

		if p, ok := resolvePlaylistEntryPath(val, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func isPLSFileKey(key string) bool {
	if !strings.HasPrefix(key, "file") {
		return false
	}
	rest := key[len("file"):]
	if rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

// resolvePlaylistEntryPath turns an entry into a local path. Remote URLs
// are rejected.
func resolvePlaylistEntryPath(raw, baseDir string) (string, bool) {
	raw = strings.Trim(raw, `"`)
	if raw == "" || strings.Contains(raw, "://") {
		return "", false
	}
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p, true
	}
	return filepath.Clean(filepath.Join(baseDir, p)), true
}
