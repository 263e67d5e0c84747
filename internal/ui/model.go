// Package ui is the terminal front end: a folder browser, the transport
// bar and the equalizer.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/retroamp/internal/logger"
	"github.com/olivier-w/retroamp/internal/media"
	"github.com/olivier-w/retroamp/internal/playback"
	"github.com/olivier-w/retroamp/internal/track"
	"github.com/olivier-w/retroamp/internal/util"
	"github.com/olivier-w/retroamp/internal/visualizer"
)

// Spectrum is the band source the equalizer reads from.
type Spectrum interface {
	Load(ctx context.Context, path string) error
	Unload()
	Bands(position float64) []float64
}

// Options configures the UI.
type Options struct {
	// Path is a directory, an audio file, or a playlist.
	Path       string
	SeekStep   float64 // seconds
	NoSpectrum bool    // animate random bands instead of analysing tracks
	Watch      bool    // rescan the shown directory when it changes
	Logger     *slog.Logger
}

// chromeLines is the number of lines View draws besides the file list.
const chromeLines = 11

// Model is the Bubbletea model for the retroamp TUI.
type Model struct {
	machine  *playback.Machine
	spectrum Spectrum
	opts     Options
	logger   *slog.Logger
	events   chan tea.Msg

	list    list.Model
	keys    keyMap
	help    help.Model
	volume  progress.Model
	eq      *visualizer.Equalizer
	bars    visualizer.Bars
	random  *visualizer.Random
	spring  springValue
	watcher *media.Watcher

	listing media.Listing
	tracks  []track.Track

	snap        playback.Snapshot
	polledAt    time.Time
	playingPath string // track the spectrum was requested for
	repeatMode  RepeatMode

	status     string
	statusErr  bool
	statusTime time.Time

	width, height int
	quitting      bool
}

// New creates the model and registers its playback callbacks on machine.
func New(machine *playback.Machine, spectrum Spectrum, opts Options) Model {
	if opts.SeekStep <= 0 {
		opts.SeekStep = 5
	}
	events := make(chan tea.Msg, 8)
	machine.SetCallbacks(
		func() { post(events, finishedMsg{}) },
		func(err error) { post(events, outputErrMsg{err: err}) },
	)
	return Model{
		machine:  machine,
		spectrum: spectrum,
		opts:     opts,
		logger:   logger.OrDiscard(opts.Logger),
		events:   events,
		list:     newFileList(),
		keys:     newKeyMap(),
		help:     help.New(),
		volume:   newVolumeGauge(),
		eq:       visualizer.NewEqualizer(),
		random:   visualizer.NewRandom(uint64(time.Now().UnixNano())),
		spring:   newSpringValue(int(time.Second / frameInterval)),
		snap:     machine.Snapshot(),
	}
}

// post delivers msg without blocking the caller; a full queue drops it.
func post(ch chan tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	default:
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.openPath(m.opts.Path),
		pollCmd(),
		frameCmd(),
		listen(m.events),
		tea.SetWindowTitle("retroamp"),
	)
}

// openPath loads whatever path names into the browser.
func (m Model) openPath(path string) tea.Cmd {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return func() tea.Msg { return dirLoadedMsg{err: err} }
	case info.IsDir():
		return loadDirCmd(path, "")
	case media.IsPlaylistExt(filepath.Ext(path)):
		return loadPlaylistCmd(path)
	default:
		abs, _ := filepath.Abs(path)
		return loadDirCmd(filepath.Dir(abs), abs)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-chromeLines, 3))
		m.help.Width = msg.Width
		return m, nil

	case dirLoadedMsg:
		return m.handleDirLoaded(msg)

	case rescanMsg:
		if msg.dir != m.listing.Dir {
			return m, nil
		}
		return m, tea.Batch(loadDirCmd(msg.dir, ""), m.watchNext())

	case pollMsg:
		m.machine.UpdatePosition()
		m = m.refresh()
		m.polledAt = time.Now()
		if m.status != "" && time.Since(m.statusTime) > statusTTL {
			m.status = ""
		}
		return m, pollCmd()

	case frameMsg:
		m = m.animate()
		return m, frameCmd()

	case finishedMsg:
		m = m.advance()
		cmd := m.syncTrack()
		return m, tea.Batch(cmd, listen(m.events))

	case outputErrMsg:
		m = m.setStatus(msg.err.Error(), true)
		m = m.refresh()
		return m, listen(m.events)

	case spectrumLoadedMsg:
		if msg.err != nil && msg.path == m.playingPath {
			m.logger.Debug("spectrum unavailable, using random bands", "path", msg.path, "error", msg.err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
		return m.quit()
	}
	// Don't intercept keys when filtering
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Pause):
		m.machine.TogglePause()
	case key.Matches(msg, m.keys.Stop):
		m.machine.Stop()
	case key.Matches(msg, m.keys.Next):
		m.machine.NextTrack()
	case key.Matches(msg, m.keys.Prev):
		m.machine.PreviousTrack()
	case key.Matches(msg, m.keys.SeekBack):
		m.machine.SeekBackward(m.opts.SeekStep)
	case key.Matches(msg, m.keys.SeekFwd):
		m.machine.SeekForward(m.opts.SeekStep)
	case key.Matches(msg, m.keys.VolUp):
		m.machine.VolumeUp(playback.VolumeStep)
	case key.Matches(msg, m.keys.VolDown):
		m.machine.VolumeDown(playback.VolumeStep)
	case key.Matches(msg, m.keys.Repeat):
		m.repeatMode = m.repeatMode.Next()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		return m.openSelected()
	case key.Matches(msg, m.keys.Parent):
		if m.listing.Dir == "" {
			return m, nil
		}
		return m, loadDirCmd(filepath.Dir(m.listing.Dir), "")
	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	m = m.refresh()
	cmd := m.syncTrack()
	return m, cmd
}

func (m Model) openSelected() (Model, tea.Cmd) {
	switch item := m.list.SelectedItem().(type) {
	case dirItem:
		return m, loadDirCmd(item.path, "")
	case trackItem:
		m.machine.LoadTracks(m.tracks)
		m.machine.PlayTrack(item.index)
		m = m.refresh()
		cmd := m.syncTrack()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleDirLoaded(msg dirLoadedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m = m.setStatus(msg.err.Error(), true)
		return m, nil
	}

	var cmds []tea.Cmd
	if msg.listing.Dir != m.listing.Dir {
		m.list.ResetFilter()
		m.list.Select(0)
		cmds = append(cmds, m.rewatch(msg.listing.Dir))
	}
	m.listing = msg.listing
	m.tracks = msg.tracks
	cmds = append(cmds, m.list.SetItems(listItems(m.listing, m.tracks)))

	if msg.autoplay != "" {
		for i, t := range m.tracks {
			if t.Path == msg.autoplay {
				m.machine.LoadTracks(m.tracks)
				m.machine.PlayTrack(i)
				m.list.Select(len(m.listing.Dirs) + i)
				break
			}
		}
		m = m.refresh()
		cmds = append(cmds, m.syncTrack())
	}
	return m, tea.Batch(cmds...)
}

// rewatch moves the directory watcher to dir.
func (m *Model) rewatch(dir string) tea.Cmd {
	if !m.opts.Watch {
		return nil
	}
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			m.logger.Debug("closing watcher", "error", err)
		}
		m.watcher = nil
	}
	w, err := media.Watch(dir, media.DefaultDebounce, m.logger)
	if err != nil {
		m.logger.Warn("directory watch unavailable", "dir", dir, "error", err)
		return nil
	}
	m.watcher = w
	return watchCmd(w)
}

func (m Model) watchNext() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return watchCmd(m.watcher)
}

// advance applies the repeat policy after a track ended.
func (m Model) advance() Model {
	snap := m.machine.Snapshot()
	switch m.repeatMode {
	case RepeatOne:
		if snap.Index >= 0 {
			m.machine.PlayTrack(snap.Index)
		} else if snap.Current != nil {
			m.machine.PlayFile(*snap.Current)
		}
	case RepeatAll:
		if snap.HasNext() {
			m.machine.CheckAutoNext()
		} else {
			m.machine.PlayTrack(0)
		}
	default:
		m.machine.CheckAutoNext()
	}
	return m.refresh()
}

// refresh copies the machine state into the model. The position estimate
// restarts only when the track, state or reported position changed.
func (m Model) refresh() Model {
	prev := m.snap
	m.snap = m.machine.Snapshot()
	trackChanged := m.currentPath() != pathOf(prev.Current)
	if trackChanged || m.snap.State != prev.State || m.snap.Position != prev.Position {
		m.polledAt = time.Now()
	}
	if trackChanged || m.snap.Position < prev.Position {
		m.spring.snap(m.snap.Progress())
	}
	return m
}

func pathOf(t *track.Track) string {
	if t == nil {
		return ""
	}
	return t.Path
}

func (m Model) currentPath() string {
	return pathOf(m.snap.Current)
}

// syncTrack keeps the spectrum engine on the current track.
func (m *Model) syncTrack() tea.Cmd {
	path := m.currentPath()
	if path == m.playingPath {
		return nil
	}
	m.playingPath = path
	if path == "" {
		m.spectrum.Unload()
		m.bars.Stop()
		return nil
	}
	m.spectrum.Unload()
	if m.opts.NoSpectrum {
		return nil
	}
	return loadSpectrumCmd(m.spectrum, path)
}

// position estimates the playback position between polls.
func (m Model) position() float64 {
	pos := m.snap.Position
	if m.snap.IsPlaying() {
		pos += time.Since(m.polledAt).Seconds()
	}
	if m.snap.Current != nil && m.snap.Current.Duration > 0 {
		pos = min(pos, m.snap.Current.Duration)
	}
	return pos
}

func (m Model) animate() Model {
	switch m.snap.State {
	case playback.Playing:
		if !m.bars.Active() {
			m.bars.Start()
		}
		var src visualizer.Source
		if !m.opts.NoSpectrum {
			pos := m.position()
			src = func() []float64 { return m.spectrum.Bands(pos) }
		}
		m.bars.Tick(visualizer.Frame(src, m.random))
	case playback.Stopped:
		if m.bars.Active() {
			m.bars.Stop()
		}
	}

	target := 0.0
	if d := m.trackDuration(); d > 0 {
		target = min(m.position()/d, 1)
	}
	m.spring.step(target)
	return m
}

func (m Model) trackDuration() float64 {
	if m.snap.Current == nil {
		return 0
	}
	return m.snap.Current.Duration
}

func (m Model) setStatus(s string, isErr bool) Model {
	m.status, m.statusErr, m.statusTime = s, isErr, time.Now()
	return m
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.machine.Stop()
	m.spectrum.Unload()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 60
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n\n")

	b.WriteString("  " + m.nowPlaying(w-4) + "\n")

	elapsed := util.FormatSeconds(m.position())
	total := "--:--"
	if m.snap.Current != nil {
		total = m.snap.Current.DurationDisplay()
	}
	barWidth := max(w-len(elapsed)-len(total)-6, 10)
	b.WriteString(fmt.Sprintf("  %s %s %s\n",
		timeStyle.Render(elapsed), renderProgressBar(m.spring.pos, barWidth), timeStyle.Render(total)))
	b.WriteString("\n")

	b.WriteString(m.eq.Render(&m.bars))
	b.WriteString("\n")
	if !m.bars.Active() {
		b.WriteString("\n\n")
	}
	b.WriteString("\n")

	left := renderVolume(m.volume, m.snap.Volume)
	if icon := m.repeatMode.Icon(); icon != "" {
		left += "  " + icon
	}
	b.WriteString("  " + statusStyle.Render(left) + "\n")

	switch {
	case m.status != "" && m.statusErr:
		b.WriteString("  " + errorStyle.Render(m.status) + "\n")
	case m.status != "":
		b.WriteString("  " + statusStyle.Render(m.status) + "\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString("  " + m.help.View(m.keys))
	return b.String()
}

func (m Model) nowPlaying(width int) string {
	icon := stateIcon(m.snap.State)
	if m.snap.Current == nil {
		return statusStyle.Render(icon + "  " + m.snap.State.String())
	}
	t := m.snap.Current
	line := icon + "  " + titleStyle.Render(t.DisplayName())
	if t.Artist != "" {
		line += artistStyle.Render("  " + t.Artist)
	}
	if info := strings.TrimSpace(t.FormatDisplay() + "  " + t.BitRateDisplay()); info != "" && width > 50 {
		line += timeStyle.Render("  " + info)
	}
	return line
}
