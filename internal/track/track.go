// Package track describes audio files and reads their metadata.
package track

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/olivier-w/retroamp/internal/util"
)

// Format is an audio container recognised by file extension.
type Format string

const (
	FormatMP3     Format = "mp3"
	FormatOGG     Format = "ogg"
	FormatFLAC    Format = "flac"
	FormatWAV     Format = "wav"
	FormatUnknown Format = "unknown"
)

// FormatFromExt maps an extension such as ".Mp3" to its Format.
func FormatFromExt(ext string) Format {
	switch strings.ToLower(ext) {
	case ".mp3":
		return FormatMP3
	case ".ogg", ".oga":
		return FormatOGG
	case ".flac":
		return FormatFLAC
	case ".wav":
		return FormatWAV
	default:
		return FormatUnknown
	}
}

// Track is one audio file and what is known about it.
type Track struct {
	Path        string
	Name        string // file name with extension
	Title       string
	Artist      string
	Album       string
	Format      Format
	Duration    float64 // seconds, 0 if unknown
	SampleRate  int
	BitRateKbps int
}

// New returns a Track for path with name and format filled from the path.
func New(path string) Track {
	return Track{
		Path:   path,
		Name:   filepath.Base(path),
		Format: FormatFromExt(filepath.Ext(path)),
	}
}

// DisplayName is the tag title, or the file name without extension.
func (t Track) DisplayName() string {
	if t.Title != "" {
		return t.Title
	}
	base := filepath.Base(t.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DurationDisplay formats the duration, or "--:--" when unknown.
func (t Track) DurationDisplay() string {
	if int(t.Duration) <= 0 {
		return "--:--"
	}
	return util.FormatDuration(time.Duration(t.Duration) * time.Second)
}

func (t Track) BitRateDisplay() string {
	if t.BitRateKbps <= 0 {
		return ""
	}
	return fmt.Sprintf("%d kbps", t.BitRateKbps)
}

func (t Track) FormatDisplay() string {
	return strings.ToUpper(string(t.Format))
}
