package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/retroamp/internal/media"
	"github.com/olivier-w/retroamp/internal/track"
	"github.com/samber/lo"
)

type dirItem struct {
	path  string
	label string
}

func (i dirItem) Title() string       { return i.label }
func (i dirItem) Description() string { return "folder" }
func (i dirItem) FilterValue() string { return i.label }

type trackItem struct {
	t     track.Track
	index int // position in the model's track list
}

func (i trackItem) Title() string { return i.t.DisplayName() }

func (i trackItem) Description() string {
	parts := []string{i.t.Artist, i.t.DurationDisplay(), i.t.FormatDisplay(), i.t.BitRateDisplay()}
	return strings.Join(lo.Compact(parts), "  ")
}

func (i trackItem) FilterValue() string { return i.t.DisplayName() + " " + i.t.Artist }

func newFileList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(nil, delegate, 80, 20)
	l.Title = "retroamp"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = headerStyle
	return l
}

// listItems builds the browser entries: folders first, then tracks.
func listItems(l media.Listing, tracks []track.Track) []list.Item {
	parent := filepath.Dir(l.Dir)
	dirs := lo.Map(l.Dirs, func(p string, _ int) list.Item {
		label := filepath.Base(p) + "/"
		if p == parent && p != l.Dir {
			label = "../"
		}
		return dirItem{path: p, label: label}
	})
	files := lo.Map(tracks, func(t track.Track, i int) list.Item {
		return trackItem{t: t, index: i}
	})
	return append(dirs, files...)
}
