package playback

import (
	"log/slog"
	"sync"

	"github.com/olivier-w/retroamp/internal/logger"
	"github.com/olivier-w/retroamp/internal/track"
)

const (
	// VolumeStep is the usual VolumeUp/VolumeDown increment.
	VolumeStep = 0.05

	// minElapsed is how far a track must have played before an idle output
	// counts as the end of the track. Right after Play the output can still
	// report idle; tracks shorter than this are never detected as finished.
	minElapsed = 1.0
)

// Machine owns the transport state and drives an Output. Output failures
// never escape: they stop playback and are reported to the error callback.
// Callbacks run on the calling goroutine after the machine's lock is
// released, so they may call back into the machine.
type Machine struct {
	out    Output
	logger *slog.Logger

	mu         sync.Mutex
	snap       Snapshot
	onFinished func()
	onError    func(error)
}

// New returns a stopped machine with no tracks and the default volume.
func New(out Output, l *slog.Logger) *Machine {
	return &Machine{
		out:    out,
		logger: logger.OrDiscard(l),
		snap: Snapshot{
			State:  Stopped,
			Volume: DefaultVolume,
			Index:  -1,
		},
	}
}

// SetCallbacks replaces both callbacks. Either may be nil.
func (m *Machine) SetCallbacks(onFinished func(), onError func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFinished = onFinished
	m.onError = onError
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone()
}

// do runs fn under the lock and then the notification it returns, if any.
func (m *Machine) do(fn func() func()) {
	m.mu.Lock()
	notify := fn()
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// fail stops playback after an output error and returns the notification.
// The output is told to stop as well; a second failure there is only logged.
func (m *Machine) fail(op, path string, err error) func() {
	m.snap.State = Stopped
	if op != "stop" {
		if serr := m.out.Stop(); serr != nil {
			m.logger.Debug("stop after output failure", "op", op, "error", serr)
		}
	}
	oerr := &OutputError{Op: op, Path: path, Err: err}
	m.logger.Warn("audio output failed", "op", op, "path", path, "error", err)
	cb := m.onError
	if cb == nil {
		return nil
	}
	return func() { cb(oerr) }
}

func (m *Machine) currentPath() string {
	if m.snap.Current == nil {
		return ""
	}
	return m.snap.Current.Path
}

// LoadTracks replaces the track list and deselects the current track. The
// transport state is left alone.
func (m *Machine) LoadTracks(tracks []track.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Tracks = append([]track.Track(nil), tracks...)
	m.snap.Index = -1
	m.snap.Current = nil
}

// PlayTrack plays Tracks[index]. Out-of-range indexes are ignored.
func (m *Machine) PlayTrack(index int) {
	m.do(func() func() { return m.playIndex(index) })
}

func (m *Machine) playIndex(index int) func() {
	if index < 0 || index >= len(m.snap.Tracks) {
		return nil
	}
	m.snap.Index = index
	return m.play(m.snap.Tracks[index])
}

// PlayFile plays t without touching the track list or index.
func (m *Machine) PlayFile(t track.Track) {
	m.do(func() func() { return m.play(t) })
}

func (m *Machine) play(t track.Track) func() {
	m.snap.Position = 0
	if err := m.out.Play(t.Path); err != nil {
		m.snap.Current = nil
		return m.fail("play", t.Path, err)
	}
	m.snap.Current = &t
	m.snap.State = Playing
	m.logger.Debug("playing", "path", t.Path, "index", m.snap.Index)
	return nil
}

// TogglePause pauses while playing and resumes while paused.
func (m *Machine) TogglePause() {
	m.do(func() func() {
		switch m.snap.State {
		case Playing:
			if err := m.out.Pause(); err != nil {
				return m.fail("pause", m.currentPath(), err)
			}
			m.snap.State = Paused
		case Paused:
			if err := m.out.Unpause(); err != nil {
				return m.fail("unpause", m.currentPath(), err)
			}
			m.snap.State = Playing
		}
		return nil
	})
}

// Stop stops playback and rewinds the position to 0.
func (m *Machine) Stop() {
	m.do(func() func() {
		m.snap.State = Stopped
		m.snap.Position = 0
		if err := m.out.Stop(); err != nil {
			return m.fail("stop", m.currentPath(), err)
		}
		return nil
	})
}

// NextTrack plays the following track, if any.
func (m *Machine) NextTrack() {
	m.do(func() func() {
		if !m.snap.HasNext() {
			return nil
		}
		return m.playIndex(m.snap.Index + 1)
	})
}

// PreviousTrack plays the preceding track, if any.
func (m *Machine) PreviousTrack() {
	m.do(func() func() {
		if !m.snap.HasPrevious() {
			return nil
		}
		return m.playIndex(m.snap.Index - 1)
	})
}

// SetVolume clamps v to [0,1] and applies it.
func (m *Machine) SetVolume(v float64) {
	m.do(func() func() { return m.setVolume(v) })
}

func (m *Machine) setVolume(v float64) func() {
	m.snap.Volume = max(0, min(v, 1))
	if err := m.out.SetVolume(m.snap.Volume); err != nil {
		return m.fail("set volume", m.currentPath(), err)
	}
	return nil
}

func (m *Machine) VolumeUp(step float64) {
	m.do(func() func() { return m.setVolume(m.snap.Volume + step) })
}

func (m *Machine) VolumeDown(step float64) {
	m.do(func() func() { return m.setVolume(m.snap.Volume - step) })
}

// SeekForward moves the position ahead, stopping at the track's end when
// its duration is known.
func (m *Machine) SeekForward(seconds float64) {
	m.do(func() func() {
		if !m.seekable() {
			return nil
		}
		target := m.snap.Position + seconds
		if d := m.snap.Current.Duration; d > 0 {
			target = min(target, d)
		}
		return m.seek(target)
	})
}

// SeekBackward moves the position back, not past 0.
func (m *Machine) SeekBackward(seconds float64) {
	m.do(func() func() {
		if !m.seekable() {
			return nil
		}
		return m.seek(max(m.snap.Position-seconds, 0))
	})
}

func (m *Machine) seekable() bool {
	return m.snap.Current != nil && m.snap.State != Stopped
}

func (m *Machine) seek(target float64) func() {
	m.snap.Position = target
	if err := m.out.Seek(target); err != nil {
		return m.fail("seek", m.currentPath(), err)
	}
	return nil
}

// UpdatePosition polls the output while playing. A positive position is
// adopted; anything else keeps the last good value. An idle output after at
// least one second of playback ends the track: the machine stops and the
// finished callback fires.
func (m *Machine) UpdatePosition() {
	m.do(func() func() {
		if m.snap.State != Playing {
			return nil
		}

		pos, err := m.out.Position()
		if err != nil {
			m.logger.Debug("position read failed", "error", err)
		} else if pos > 0 {
			m.snap.Position = pos
		}

		busy, err := m.out.Busy()
		if err != nil {
			return m.fail("busy", m.currentPath(), err)
		}
		if busy || m.snap.Position < minElapsed {
			return nil
		}

		m.snap.State = Stopped
		m.logger.Debug("track finished", "path", m.currentPath())
		return m.onFinished
	})
}

// CheckAutoNext advances to the next track when stopped and one exists.
func (m *Machine) CheckAutoNext() {
	m.do(func() func() {
		if m.snap.State != Stopped || !m.snap.HasNext() {
			return nil
		}
		return m.playIndex(m.snap.Index + 1)
	})
}
