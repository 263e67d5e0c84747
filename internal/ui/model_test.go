package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/retroamp/internal/logger"
	"github.com/olivier-w/retroamp/internal/media"
	"github.com/olivier-w/retroamp/internal/playback"
	"github.com/olivier-w/retroamp/internal/track"
	"github.com/olivier-w/retroamp/internal/visualizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutput struct {
	played  []string
	busy    bool
	pos     float64
	playErr error
}

func (f *fakeOutput) Play(path string) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append(f.played, path)
	f.busy = true
	f.pos = 0
	return nil
}
func (f *fakeOutput) Pause() error { return nil }
func (f *fakeOutput) Unpause() error { return nil }
func (f *fakeOutput) Stop() error { f.busy = false; return nil }
func (f *fakeOutput) SetVolume(float64) error { return nil }
func (f *fakeOutput) Position() (float64, error) { return f.pos, nil }
func (f *fakeOutput) Seek(sec float64) error { f.pos = sec; return nil }
func (f *fakeOutput) Busy() (bool, error) { return f.busy, nil }

type fakeSpectrum struct {
	mu       sync.Mutex
	loads    []string
	unloads  int
	bands    []float64
	requests []float64
}

func (f *fakeSpectrum) Load(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, path)
	return nil
}

func (f *fakeSpectrum) Unload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloads++
}

func (f *fakeSpectrum) Bands(pos float64) []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, pos)
	return f.bands
}

func tracksOf(paths ...string) []track.Track {
	out := make([]track.Track, len(paths))
	for i, p := range paths {
		out[i] = track.New(p)
		out[i].Duration = 120
	}
	return out
}

func newTestModel(t *testing.T) (Model, *fakeOutput, *fakeSpectrum) {
	t.Helper()
	out := &fakeOutput{}
	eng := &fakeSpectrum{}
	machine := playback.New(out, logger.NewTestLogger())
	m := New(machine, eng, Options{Logger: logger.NewTestLogger()})
	return m, out, eng
}

// loaded feeds the model a listing with the given tracks.
func loaded(t *testing.T, m Model, tracks []track.Track) Model {
	t.Helper()
	files := make([]string, len(tracks))
	for i, tr := range tracks {
		files[i] = tr.Path
	}
	next, _ := m.handleMsg(dirLoadedMsg{
		listing: media.Listing{Dir: "/music", Files: files},
		tracks:  tracks,
	})
	return next
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	right = tea.KeyMsg{Type: tea.KeyRight}
)

func TestEnterPlaysSelectedTrackAndLoadsSpectrum(t *testing.T) {
	m, out, eng := newTestModel(t)
	m = loaded(t, m, tracksOf("/music/a.mp3", "/music/b.mp3"))
	m.list.Select(1)

	next, cmd := m.handleMsg(enter)
	assert.Equal(t, []string{"/music/b.mp3"}, out.played)
	assert.True(t, next.snap.IsPlaying())
	assert.Equal(t, 1, next.snap.Index)

	require.NotNil(t, cmd)
	msg, ok := cmd().(spectrumLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "/music/b.mp3", msg.path)
	assert.Equal(t, []string{"/music/b.mp3"}, eng.loads)
}

func TestNoSpectrumSkipsAnalysis(t *testing.T) {
	m, _, eng := newTestModel(t)
	m.opts.NoSpectrum = true
	m = loaded(t, m, tracksOf("/music/a.mp3"))

	_, cmd := m.handleMsg(enter)
	assert.Nil(t, cmd)
	assert.Empty(t, eng.loads)
}

func TestTransportKeys(t *testing.T) {
	m, out, _ := newTestModel(t)
	m = loaded(t, m, tracksOf("/music/a.mp3", "/music/b.mp3"))
	m, _ = m.handleMsg(enter)

	m, _ = m.handleMsg(space)
	assert.True(t, m.snap.IsPaused())
	m, _ = m.handleMsg(space)
	assert.True(t, m.snap.IsPlaying())

	m, _ = m.handleMsg(right)
	assert.Equal(t, 5.0, m.snap.Position)

	m, _ = m.handleMsg(runeKey('n'))
	assert.Equal(t, 1, m.snap.Index)
	assert.Equal(t, "/music/b.mp3", out.played[len(out.played)-1])

	m, _ = m.handleMsg(runeKey('-'))
	assert.InDelta(t, 0.75, m.snap.Volume, 1e-9)

	m, _ = m.handleMsg(runeKey('s'))
	assert.True(t, m.snap.IsStopped())
	assert.Equal(t, 0.0, m.snap.Position)
}

func TestRepeatKeyCycles(t *testing.T) {
	m, _, _ := newTestModel(t)
	for _, want := range []RepeatMode{RepeatAll, RepeatOne, RepeatOff} {
		m, _ = m.handleMsg(runeKey('r'))
		assert.Equal(t, want, m.repeatMode)
	}
}

func TestKeysKeepPositionEstimate(t *testing.T) {
	m, out, eng := newTestModel(t)
	m = loaded(t, m, tracksOf("/music/a.mp3"))
	m, _ = m.handleMsg(enter)

	out.pos = 10
	m, _ = m.handleMsg(pollMsg{})
	require.Equal(t, 10.0, m.snap.Position)
	m.polledAt = time.Now().Add(-400 * time.Millisecond)

	m, _ = m.handleMsg(frameMsg{})
	before := eng.requests[len(eng.requests)-1]
	require.GreaterOrEqual(t, before, 10.4)

	for _, k := range []tea.KeyMsg{runeKey('+'), runeKey('-'), runeKey('r')} {
		m, _ = m.handleMsg(k)
		m, _ = m.handleMsg(frameMsg{})
		after := eng.requests[len(eng.requests)-1]
		assert.GreaterOrEqual(t, after, before, "after %q", k.String())
		before = after
	}

	m, _ = m.handleMsg(right)
	assert.Equal(t, 15.0, m.snap.Position)
	assert.InDelta(t, 15.0, m.position(), 0.1)
}

func TestFinishedAdvancesPerRepeatMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  RepeatMode
		start int
		want  int
		state playback.State
	}{
		{"off advances", RepeatOff, 0, 1, playback.Playing},
		{"off stops at end", RepeatOff, 1, 1, playback.Stopped},
		{"all wraps", RepeatAll, 1, 0, playback.Playing},
		{"one replays", RepeatOne, 0, 0, playback.Playing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, out, _ := newTestModel(t)
			m = loaded(t, m, tracksOf("/music/a.mp3", "/music/b.mp3"))
			m.repeatMode = tt.mode
			m.machine.LoadTracks(m.tracks)
			m.machine.PlayTrack(tt.start)

			out.busy = false
			out.pos = 3
			m.machine.UpdatePosition()

			next, _ := m.handleMsg(finishedMsg{})
			assert.Equal(t, tt.state, next.snap.State)
			assert.Equal(t, tt.want, next.snap.Index)
		})
	}
}

func TestCallbacksPostToEventQueue(t *testing.T) {
	m, out, _ := newTestModel(t)
	out.playErr = errors.New("device gone")
	m.machine.PlayFile(track.New("/music/a.mp3"))

	errMsg, ok := listen(m.events)().(outputErrMsg)
	require.True(t, ok)

	next, cmd := m.handleMsg(errMsg)
	assert.True(t, next.statusErr)
	assert.Contains(t, next.status, "device gone")
	assert.NotNil(t, cmd, "listen should be re-armed")
}

func TestFrameTicksBarsFromSpectrum(t *testing.T) {
	m, _, eng := newTestModel(t)
	eng.bands = make([]float64, visualizer.NumBars)
	for i := range eng.bands {
		eng.bands[i] = 1
	}
	m = loaded(t, m, tracksOf("/music/a.mp3"))
	m, _ = m.handleMsg(enter)

	m, _ = m.handleMsg(frameMsg{})
	require.True(t, m.bars.Active())
	assert.NotEmpty(t, eng.requests)
	for _, lv := range m.bars.Levels() {
		assert.Equal(t, 3, lv)
	}

	m, _ = m.handleMsg(space)
	m, _ = m.handleMsg(frameMsg{})
	assert.Equal(t, 3, m.bars.Levels()[0], "paused bars stay frozen")

	m, _ = m.handleMsg(runeKey('s'))
	m, _ = m.handleMsg(frameMsg{})
	assert.False(t, m.bars.Active())
}

func TestStopKeepsCurrentTrackLoaded(t *testing.T) {
	m, _, eng := newTestModel(t)
	m = loaded(t, m, tracksOf("/music/a.mp3"))
	m, _ = m.handleMsg(enter)
	before := eng.unloads

	m, _ = m.handleMsg(runeKey('s'))
	assert.Equal(t, "/music/a.mp3", m.currentPath())
	assert.Equal(t, before, eng.unloads)
}

func TestDirLoadedAutoplay(t *testing.T) {
	m, out, _ := newTestModel(t)
	tracks := tracksOf("/music/a.mp3", "/music/b.mp3")
	next, _ := m.handleMsg(dirLoadedMsg{
		listing:  media.Listing{Dir: "/music", Dirs: []string{"/"}, Files: []string{tracks[0].Path, tracks[1].Path}},
		tracks:   tracks,
		autoplay: "/music/b.mp3",
	})
	assert.Equal(t, []string{"/music/b.mp3"}, out.played)
	assert.Equal(t, 2, next.list.Index())
	assert.Len(t, next.list.Items(), 3)
}

func TestDirLoadedError(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, _ := m.handleMsg(dirLoadedMsg{err: errors.New("permission denied")})
	assert.True(t, next.statusErr)
	assert.Equal(t, "permission denied", next.status)
}

func TestLoadDirCmdReadsTracks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp3", "a.wav", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	msg, ok := loadDirCmd(dir, "")().(dirLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	require.Len(t, msg.tracks, 2)
	assert.Equal(t, "a.wav", msg.tracks[0].Name)
	assert.Equal(t, "b.mp3", msg.tracks[1].Name)
}

func TestLoadPlaylistCmdAutoplaysFirstEntry(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.mp3", "two.flac"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	pl := filepath.Join(dir, "list.m3u")
	require.NoError(t, os.WriteFile(pl, []byte("#EXTM3U\ntwo.flac\none.mp3\nmissing.mp3\n"), 0o644))

	msg, ok := loadPlaylistCmd(pl)().(dirLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Len(t, msg.tracks, 2)
	assert.Equal(t, "two.flac", filepath.Base(msg.autoplay))
}

func TestViewShowsNowPlaying(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.width, m.height = 80, 30
	assert.Contains(t, m.View(), "stopped")

	m = loaded(t, m, tracksOf("/music/song.mp3"))
	m, _ = m.handleMsg(enter)
	view := m.View()
	assert.Contains(t, view, "song")
	assert.Contains(t, view, "2:00")

	m.quitting = true
	assert.Empty(t, m.View())
}
