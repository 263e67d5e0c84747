// Package media finds playable audio files: by extension, in directories,
// in playlists, and as they appear or disappear on disk.
package media

import (
	"strings"

	"github.com/samber/lo"
)

var audioExts = []string{".mp3", ".wav", ".flac", ".ogg", ".oga"}

var playlistExts = []string{".m3u", ".m3u8", ".pls"}

// IsSupportedExt returns true if the extension is a supported playable media format.
func IsSupportedExt(ext string) bool {
	return lo.Contains(audioExts, strings.ToLower(ext))
}

// IsPlaylistExt returns true if the extension is a supported playlist format.
func IsPlaylistExt(ext string) bool {
	return lo.Contains(playlistExts, strings.ToLower(ext))
}

// SupportedExtsList returns a human-readable list of supported playable media formats.
func SupportedExtsList() string {
	return strings.Join(audioExts, ", ")
}
