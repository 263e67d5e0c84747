// Package player plays audio files through the system audio device.
package player

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/retroamp/internal/audio"
	"github.com/olivier-w/retroamp/internal/logger"
)

const (
	sampleRate   = 44100
	channelCount = 2
	outFrame     = channelCount * audio.BytesPerSample
	outPerSec    = sampleRate * outFrame
)

// sink is the part of *oto.Player the output uses.
type sink interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(v float64)
	BufferedSize() int
	Close() error
}

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide oto context; oto allows only one.
func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

func otoSink(r io.Reader) (sink, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	return ctx.NewPlayer(r), nil
}

// session is one opened track.
type session struct {
	path    string
	file    *os.File
	decoder audio.Decoder
	counter *countingReader // bytes taken from decoder
	sink    sink
	paused  bool
}

// bytesPerSec is the decoder's output rate in bytes.
func (s *session) bytesPerSec() int64 {
	return int64(s.decoder.SampleRate()) * int64(s.decoder.ChannelCount()) * audio.BytesPerSample
}

func (s *session) close() {
	s.sink.Pause()
	_ = s.sink.Close()
	s.file.Close()
}

// Output plays one file at a time. All methods are safe for concurrent use.
// Calls that need a track are no-ops when none is loaded.
type Output struct {
	logger  *slog.Logger
	newSink func(io.Reader) (sink, error)

	mu     sync.Mutex
	volume float64
	cur    *session
}

// New returns an Output on the default audio device. The device is opened
// on the first Play.
func New(l *slog.Logger) *Output {
	return &Output{
		logger:  logger.OrDiscard(l),
		newSink: otoSink,
		volume:  1,
	}
}

// Play stops the current track and starts path from the beginning.
func (o *Output) Play(path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.closeLocked()

	dec, f, err := audio.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	s := &session{
		path:    path,
		file:    f,
		decoder: dec,
		counter: &countingReader{reader: dec},
	}
	if err := o.attach(s, true); err != nil {
		f.Close()
		return err
	}
	o.cur = s
	o.logger.Debug("output started", "path", path,
		"sample_rate", dec.SampleRate(), "channels", dec.ChannelCount())
	return nil
}

// attach builds a fresh sink reading from s's current decoder position.
func (o *Output) attach(s *session, play bool) error {
	r := audio.StereoAt(s.counter, s.decoder.ChannelCount(), s.decoder.SampleRate(), sampleRate)
	snk, err := o.newSink(r)
	if err != nil {
		return err
	}
	snk.SetVolume(o.volume)
	if play {
		snk.Play()
	}
	s.sink = snk
	s.paused = !play
	return nil
}

func (o *Output) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == nil {
		return nil
	}
	o.cur.sink.Pause()
	o.cur.paused = true
	return nil
}

func (o *Output) Unpause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == nil {
		return nil
	}
	o.cur.sink.Play()
	o.cur.paused = false
	return nil
}

// Stop ends playback and releases the file.
func (o *Output) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLocked()
	return nil
}

func (o *Output) closeLocked() {
	if o.cur == nil {
		return
	}
	o.cur.close()
	o.cur = nil
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (o *Output) SetVolume(v float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = max(0, min(v, 1))
	if o.cur != nil {
		o.cur.sink.SetVolume(o.volume)
	}
	return nil
}

// Position returns the seconds heard so far: what was taken from the
// decoder minus what is still queued in the device buffer.
func (o *Output) Position() (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == nil {
		return 0, nil
	}
	bps := o.cur.bytesPerSec()
	if bps <= 0 {
		return 0, nil
	}
	heard := float64(o.cur.counter.Pos())/float64(bps) -
		float64(o.cur.sink.BufferedSize())/outPerSec
	return max(heard, 0), nil
}

// Seek jumps to seconds from the start of the track, clamped to its length.
func (o *Output) Seek(seconds float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.cur
	if s == nil {
		return nil
	}

	frame := int64(s.decoder.ChannelCount()) * audio.BytesPerSample
	target := clampSeekByteOffset(seconds, s.bytesPerSec(), s.decoder.Length(), frame)
	if _, err := s.decoder.Seek(target, io.SeekStart); err != nil {
		return fmt.Errorf("seeking %s: %w", s.path, err)
	}
	s.counter.SetPos(target)

	// A new sink drops audio the old one had buffered.
	old := s.sink
	old.Pause()
	if err := o.attach(s, !s.paused); err != nil {
		return err
	}
	if err := old.Close(); err != nil {
		o.logger.Debug("closing previous sink", "error", err)
	}
	return nil
}

// clampSeekByteOffset converts seconds to a frame-aligned byte offset
// within [0, length].
func clampSeekByteOffset(seconds float64, bytesPerSec, length, frame int64) int64 {
	pos := int64(seconds * float64(bytesPerSec))
	pos = max(0, min(pos, length))
	if frame > 0 {
		pos -= pos % frame
	}
	return pos
}

// Busy reports whether a track is loaded and has not played out. A paused
// track counts as busy.
func (o *Output) Busy() (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == nil {
		return false, nil
	}
	return o.cur.paused || o.cur.sink.IsPlaying(), nil
}

// Close stops playback. It is safe to call more than once.
func (o *Output) Close() error {
	return o.Stop()
}
