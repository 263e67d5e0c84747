package track

import (
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/olivier-w/retroamp/internal/audio"
)

// Tags holds song information read from a file.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// Read builds a Track for path with tags and stream properties. Fields that
// cannot be read stay empty; a missing file yields an error.
func Read(path string) (Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Track{}, err
	}

	t := New(path)
	tags := ReadTags(path, t.Format)
	t.Title, t.Artist, t.Album = tags.Title, tags.Artist, tags.Album

	if dec, f, err := audio.Open(path); err == nil {
		t.SampleRate = dec.SampleRate()
		t.Duration = audio.Duration(dec)
		f.Close()
	}
	t.BitRateKbps = estimateBitRate(info.Size(), t.Duration)
	return t, nil
}

// ReadTags reads ID3v2 tags from MP3 files and uses dhowden/tag for the
// other containers.
func ReadTags(path string, format Format) Tags {
	if format == FormatMP3 {
		if tags, ok := readID3(path); ok {
			return tags
		}
	}
	return readGeneric(path)
}

func readID3(path string) (Tags, bool) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, false
	}
	defer t.Close()
	tags := Tags{
		Title:  strings.TrimSpace(t.Title()),
		Artist: strings.TrimSpace(t.Artist()),
		Album:  strings.TrimSpace(t.Album()),
	}
	return tags, tags.Title != ""
}

func readGeneric(path string) Tags {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil || m == nil {
		return Tags{}
	}
	return Tags{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
	}
}

// estimateBitRate derives an average bit rate from file size and duration.
func estimateBitRate(size int64, duration float64) int {
	if size <= 0 || duration <= 0 {
		return 0
	}
	return int(float64(size) * 8 / duration / 1000)
}
