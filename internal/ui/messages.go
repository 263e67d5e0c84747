package ui

import (
	"context"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/retroamp/internal/media"
	"github.com/olivier-w/retroamp/internal/track"
	"github.com/samber/lo"
)

const (
	pollInterval  = 500 * time.Millisecond
	frameInterval = time.Second / 12
	statusTTL     = 5 * time.Second
)

type pollMsg time.Time
type frameMsg time.Time

// finishedMsg and outputErrMsg are posted by the playback callbacks.
type finishedMsg struct{}
type outputErrMsg struct{ err error }

type dirLoadedMsg struct {
	listing  media.Listing
	tracks   []track.Track
	autoplay string // path to start once loaded
	err      error
}

type spectrumLoadedMsg struct {
	path string
	err  error
}

type rescanMsg struct{ dir string }

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// listen waits for the next message posted from outside the update loop.
func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func watchCmd(w *media.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.Changes():
			return rescanMsg{dir: w.Dir()}
		case <-w.Closed():
			return nil
		}
	}
}

func readTracks(paths []string) []track.Track {
	return lo.Map(paths, func(p string, _ int) track.Track {
		t, err := track.Read(p)
		if err != nil {
			return track.New(p)
		}
		return t
	})
}

func loadDirCmd(dir, autoplay string) tea.Cmd {
	return func() tea.Msg {
		l, err := media.ScanDir(dir)
		if err != nil {
			return dirLoadedMsg{err: err}
		}
		return dirLoadedMsg{listing: l, tracks: readTracks(l.Files), autoplay: autoplay}
	}
}

func loadPlaylistCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := media.ParseLocalPlaylist(path)
		if err != nil {
			return dirLoadedMsg{err: err}
		}
		files := media.FilterPlayableLocalPaths(entries)
		dir, _ := filepath.Abs(filepath.Dir(path))
		l := media.Listing{Dir: dir, Dirs: []string{dir}, Files: files}
		msg := dirLoadedMsg{listing: l, tracks: readTracks(files)}
		if len(files) > 0 {
			msg.autoplay = files[0]
		}
		return msg
	}
}

func loadSpectrumCmd(s Spectrum, path string) tea.Cmd {
	return func() tea.Msg {
		return spectrumLoadedMsg{path: path, err: s.Load(context.Background(), path)}
	}
}
