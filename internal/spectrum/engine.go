// Package spectrum computes log-scaled frequency band levels for a track at
// an arbitrary playback position.
package spectrum

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/olivier-w/retroamp/internal/audio"
	"github.com/olivier-w/retroamp/internal/logger"
)

// PCMDecoder decodes a whole file to interleaved 16-bit PCM.
type PCMDecoder interface {
	Decode(ctx context.Context, path string) (audio.PCM, error)
}

// buffer is one loaded track. It is immutable once published.
type buffer struct {
	path       string
	samples    []int16 // mono
	sampleRate int
	table      []Band
}

// Engine holds the decoded signal of the current track. Load runs on a
// background goroutine while Bands is polled from the UI loop; the loaded
// buffer is swapped in atomically so readers never see a partial decode.
type Engine struct {
	dec    PCMDecoder
	logger *slog.Logger

	gen    atomic.Uint64
	cur    atomic.Pointer[buffer]
	window []float64

	mu     sync.Mutex // serializes generation changes
	cancel context.CancelFunc

	scratchMu sync.Mutex
	re, im    []float64
	mags      []float64
}

// NewEngine returns an engine that decodes with dec. A nil logger discards.
func NewEngine(dec PCMDecoder, l *slog.Logger) *Engine {
	return &Engine{
		dec:    dec,
		logger: logger.OrDiscard(l),
		window: hann(FFTSize),
		re:     make([]float64, FFTSize),
		im:     make([]float64, FFTSize),
		mags:   make([]float64, FFTSize/2),
	}
}

// Load decodes path and makes it the current track. The engine is not ready
// while the decode runs. Starting another Load or calling Unload cancels this
// one; its result is then discarded and ErrSuperseded returned. A failed
// decode leaves the engine not ready and returns a *DecodeError.
func (e *Engine) Load(ctx context.Context, path string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	gen := e.begin(cancel)

	pcm, err := e.dec.Decode(ctx, path)
	if e.gen.Load() != gen {
		return ErrSuperseded
	}
	if err != nil {
		e.logger.Debug("spectrum data unavailable", "path", path, "error", err)
		return &DecodeError{Path: path, Err: err}
	}
	if pcm.SampleRate <= 0 {
		err := errors.New("invalid sample rate")
		e.logger.Debug("spectrum data unavailable", "path", path, "error", err)
		return &DecodeError{Path: path, Err: err}
	}

	b := &buffer{
		path:       path,
		samples:    pcm.Mono(),
		sampleRate: pcm.SampleRate,
		table:      BandTable(pcm.SampleRate),
	}
	if !e.publish(gen, b) {
		return ErrSuperseded
	}
	e.logger.Debug("spectrum data loaded", "path", path,
		"samples", len(b.samples), "sample_rate", b.sampleRate)
	return nil
}

// begin starts a new generation, cancelling any decode still running.
func (e *Engine) begin(cancel context.CancelFunc) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	gen := e.gen.Add(1)
	e.cur.Store(nil)
	return gen
}

// publish stores b if gen is still the newest generation.
func (e *Engine) publish(gen uint64, b *buffer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen.Load() != gen {
		return false
	}
	e.cur.Store(b)
	return true
}

// Unload discards the current track. Safe to call at any time.
func (e *Engine) Unload() {
	e.begin(nil)
}

// Ready reports whether a track is loaded.
func (e *Engine) Ready() bool {
	return e.cur.Load() != nil
}

// Path returns the loaded track's path, or "" when not ready.
func (e *Engine) Path() string {
	if b := e.cur.Load(); b != nil {
		return b.path
	}
	return ""
}

// Bands returns NumBands levels in [0,1] for the signal around position
// seconds. It returns nil when no track is loaded and NumBands zeros when
// position lies outside the track.
func (e *Engine) Bands(position float64) []float64 {
	out, err := e.Analyze(position)
	if err != nil {
		return nil
	}
	return out
}

// Analyze is Bands with the not-ready case reported as ErrNotReady.
func (e *Engine) Analyze(position float64) ([]float64, error) {
	b := e.cur.Load()
	if b == nil {
		return nil, ErrNotReady
	}
	out := make([]float64, NumBands)
	idx := position * float64(b.sampleRate)
	if math.IsNaN(idx) || idx < 0 || idx >= float64(len(b.samples)) {
		return out, nil
	}
	e.analyze(b, int(idx), out)
	return out, nil
}

// analyze runs the windowed FFT centred on sample idx and fills out.
func (e *Engine) analyze(b *buffer, idx int, out []float64) {
	e.scratchMu.Lock()
	defer e.scratchMu.Unlock()

	total := len(b.samples)
	start := max(0, idx-FFTSize/2)
	end := min(total, start+FFTSize)
	if end-start < FFTSize {
		start = max(0, end-FFTSize)
	}

	for i := range FFTSize {
		e.re[i], e.im[i] = 0, 0
		if start+i < end {
			e.re[i] = float64(b.samples[start+i]) * e.window[i] / 32768
		}
	}

	fft(e.re, e.im)

	for k := range e.mags {
		e.mags[k] = magnitude(e.re[k], e.im[k]) / (FFTSize / 2)
	}
	levels(e.mags, b.table, out)
}
