package track

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromExt(t *testing.T) {
	assert.Equal(t, FormatMP3, FormatFromExt(".MP3"))
	assert.Equal(t, FormatOGG, FormatFromExt(".oga"))
	assert.Equal(t, FormatOGG, FormatFromExt(".ogg"))
	assert.Equal(t, FormatFLAC, FormatFromExt(".flac"))
	assert.Equal(t, FormatWAV, FormatFromExt(".wav"))
	assert.Equal(t, FormatUnknown, FormatFromExt(".txt"))
	assert.Equal(t, FormatUnknown, FormatFromExt(""))
}

func TestDisplayName(t *testing.T) {
	tr := New("/music/01 - Intro.flac")
	assert.Equal(t, "01 - Intro.flac", tr.Name)
	assert.Equal(t, "01 - Intro", tr.DisplayName())

	tr.Title = "Intro"
	assert.Equal(t, "Intro", tr.DisplayName())
}

func TestDurationDisplay(t *testing.T) {
	tests := []struct {
		sec  float64
		want string
	}{
		{0, "--:--"},
		{0.7, "--:--"},
		{65, "1:05"},
		{3725.4, "1:02:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Track{Duration: tt.sec}.DurationDisplay())
	}
}

func TestBitRateAndFormatDisplay(t *testing.T) {
	tr := New("song.mp3")
	assert.Equal(t, "", tr.BitRateDisplay())
	assert.Equal(t, "MP3", tr.FormatDisplay())

	tr.BitRateKbps = 320
	assert.Equal(t, "320 kbps", tr.BitRateDisplay())
}

func TestEstimateBitRate(t *testing.T) {
	assert.Equal(t, 0, estimateBitRate(0, 10))
	assert.Equal(t, 0, estimateBitRate(1000, 0))
	assert.Equal(t, 128, estimateBitRate(160000, 10))
}

func TestReadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Beep Test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           make([]int, 16000),
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	tr, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, tr.Format)
	assert.Equal(t, "Beep Test", tr.DisplayName())
	assert.Equal(t, 8000, tr.SampleRate)
	assert.InDelta(t, 2.0, tr.Duration, 1e-9)
	assert.InDelta(t, 128, tr.BitRateKbps, 1)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.Error(t, err)
}

func TestReadUnsupportedKeepsFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	tr, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "notes", tr.DisplayName())
	assert.Equal(t, 0.0, tr.Duration)
}
