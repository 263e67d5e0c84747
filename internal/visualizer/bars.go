// Package visualizer animates frequency band levels as an equalizer with
// falling peak markers.
package visualizer

import (
	"math"

	"github.com/olivier-w/retroamp/internal/spectrum"
)

const (
	// NumBars is the number of equalizer bars, one per spectrum band.
	NumBars = spectrum.NumBands
	// Rows is the equalizer height in terminal cells.
	Rows = 3
	// StepsPerRow is the number of block heights one cell can show.
	StepsPerRow = 8
	// MaxLevel is the level of a bar filling all rows.
	MaxLevel = Rows * StepsPerRow

	riseStep       = 3
	fallStep       = 2
	peakHoldFrames = 3
	peakDecay      = 2
)

// Bars holds the smoothed bar and peak levels. It is driven from a single
// goroutine, once per animation frame.
type Bars struct {
	active bool
	level  [NumBars]int
	peak   [NumBars]int
	hold   [NumBars]int
}

// Start enables ticking.
func (b *Bars) Start() { b.active = true }

// Stop disables ticking and drops all bars and peaks to zero at once.
func (b *Bars) Stop() {
	b.active = false
	b.level = [NumBars]int{}
	b.peak = [NumBars]int{}
	b.hold = [NumBars]int{}
}

// Active reports whether the bars are animating.
func (b *Bars) Active() bool { return b.active }

// Tick moves every bar toward raw[i] (0..1) scaled to MaxLevel. Bars rise by
// up to riseStep per tick and otherwise fall by fallStep. Peaks follow the
// bar up, hold for peakHoldFrames ticks, then sink by peakDecay per tick.
// Missing entries count as silence. Inactive bars ignore ticks.
func (b *Bars) Tick(raw []float64) {
	if !b.active {
		return
	}
	for i := range NumBars {
		var v float64
		if i < len(raw) {
			v = raw[i]
		}
		target := int(math.Round(max(0, min(v, 1)) * MaxLevel))

		if target > b.level[i] {
			b.level[i] = min(b.level[i]+riseStep, target)
		} else {
			b.level[i] = max(b.level[i]-fallStep, 0)
		}

		switch {
		case b.level[i] >= b.peak[i]:
			b.peak[i] = b.level[i]
			b.hold[i] = peakHoldFrames
		case b.hold[i] > 0:
			b.hold[i]--
		default:
			b.peak[i] = max(b.peak[i]-peakDecay, 0)
		}
	}
}

// Levels returns a copy of the bar levels (0..MaxLevel).
func (b *Bars) Levels() []int {
	out := make([]int, NumBars)
	copy(out, b.level[:])
	return out
}

// Peaks returns a copy of the peak marker levels (0..MaxLevel).
func (b *Bars) Peaks() []int {
	out := make([]int, NumBars)
	copy(out, b.peak[:])
	return out
}
