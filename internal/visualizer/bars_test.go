package visualizer

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func full(v float64) []float64 {
	out := make([]float64, NumBars)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRiseIsFasterThanFall(t *testing.T) {
	require.Less(t, fallStep, riseStep)

	var b Bars
	b.Start()
	prev := 0
	for range 10 {
		b.Tick(full(1))
		lvl := b.Levels()[0]
		assert.LessOrEqual(t, lvl-prev, riseStep)
		prev = lvl
	}
	assert.Equal(t, MaxLevel, prev)

	for range 20 {
		b.Tick(full(0))
		lvl := b.Levels()[0]
		assert.LessOrEqual(t, prev-lvl, fallStep)
		assert.GreaterOrEqual(t, lvl, 0)
		prev = lvl
	}
	assert.Equal(t, 0, prev)
}

func TestRiseStopsAtTarget(t *testing.T) {
	var b Bars
	b.Start()
	b.Tick(full(2.0 / MaxLevel))
	assert.Equal(t, 2, b.Levels()[5])
}

func TestTargetRounds(t *testing.T) {
	var b Bars
	b.Start()
	// 0.52 * 24 = 12.48 rounds to 12, 0.53 * 24 = 12.72 to 13.
	for range 4 {
		b.Tick([]float64{0.52, 0.53})
	}
	lv := b.Levels()
	assert.Equal(t, 12, lv[0])
	assert.Equal(t, 12, lv[1])
	assert.Equal(t, 0, lv[2])

	// At its target a bar falls, so only the rounded-up band keeps rising.
	b.Tick([]float64{0.52, 0.53})
	lv = b.Levels()
	assert.Equal(t, 10, lv[0])
	assert.Equal(t, 13, lv[1])
}

func TestPeakHoldThenDecay(t *testing.T) {
	var b Bars
	b.Start()
	for range 8 {
		b.Tick(full(1))
	}
	require.Equal(t, MaxLevel, b.Peaks()[0])

	peaks := []int{}
	for range 7 {
		b.Tick(full(0))
		peaks = append(peaks, b.Peaks()[0])
	}
	// Held for three ticks, then down by peakDecay per tick.
	assert.Equal(t, []int{24, 24, 24, 22, 20, 18, 16}, peaks)
	assert.Less(t, b.Levels()[0], b.Peaks()[0])
}

func TestPeakNeverNegative(t *testing.T) {
	var b Bars
	b.Start()
	b.Tick(full(3.0 / MaxLevel))
	for range 20 {
		b.Tick(nil)
	}
	assert.Equal(t, make([]int, NumBars), b.Peaks())
	assert.Equal(t, make([]int, NumBars), b.Levels())
}

func TestStopResetsImmediately(t *testing.T) {
	var b Bars
	b.Start()
	b.Tick(full(1))
	b.Tick(full(1))

	b.Stop()

	assert.False(t, b.Active())
	assert.Equal(t, make([]int, NumBars), b.Levels())
	assert.Equal(t, make([]int, NumBars), b.Peaks())

	b.Tick(full(1))
	assert.Equal(t, make([]int, NumBars), b.Levels())
}

func TestTickClampsInput(t *testing.T) {
	var b Bars
	b.Start()
	for range 10 {
		b.Tick(append(full(5), -3))
	}
	assert.Equal(t, MaxLevel, b.Levels()[0])
}

func TestRandomBands(t *testing.T) {
	r := NewRandom(7)
	zeros := 0
	for range 50 {
		bands := r.Bands()
		require.Len(t, bands, NumBars)
		for i, v := range bands {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1-float64(i)/NumBars*0.4+1e-12)
			if v == 0 {
				zeros++
			}
		}
	}
	assert.Greater(t, zeros, 0)
}

func TestFrameFallsBack(t *testing.T) {
	r := NewRandom(1)
	want := full(0.25)

	assert.Equal(t, want, Frame(func() []float64 { return want }, r))
	assert.Len(t, Frame(func() []float64 { return nil }, r), NumBars)
	assert.Len(t, Frame(func() []float64 { return []float64{1} }, r), NumBars)
	assert.Len(t, Frame(nil, r), NumBars)

	long := append(full(0.1), 0.9)
	assert.Len(t, Frame(func() []float64 { return long }, r), NumBars)
}

func TestRenderInactive(t *testing.T) {
	var b Bars
	out := plainEqualizer().Render(&b)
	assert.Equal(t, margin+strings.Repeat("▁", NumBars)+margin, out)
}

func TestRenderRows(t *testing.T) {
	var b Bars
	b.Start()
	raw := make([]float64, NumBars)
	raw[0] = 1
	raw[1] = 10.0 / MaxLevel
	for range 8 {
		b.Tick(raw)
	}

	lines := strings.Split(plainEqualizer().Render(&b), "\n")
	require.Len(t, lines, Rows)
	for _, l := range lines {
		assert.Equal(t, NumBars+2*len(margin), len([]rune(l)))
	}
	top := []rune(lines[0])[len(margin):]
	mid := []rune(lines[1])[len(margin):]
	bottom := []rune(lines[2])[len(margin):]
	assert.Equal(t, '█', top[0])
	assert.Equal(t, '█', mid[0])
	assert.Equal(t, '█', bottom[0])
	assert.Equal(t, ' ', top[1])
	assert.Equal(t, '▂', mid[1])
	assert.Equal(t, '█', bottom[1])
	assert.Equal(t, ' ', bottom[2])
}

func TestRenderPeakMarker(t *testing.T) {
	var b Bars
	b.Start()
	raw := make([]float64, NumBars)
	raw[0] = 12.0 / MaxLevel
	for range 4 {
		b.Tick(raw)
	}
	require.Equal(t, 12, b.Levels()[0])
	b.Tick(make([]float64, NumBars))
	require.Equal(t, 10, b.Levels()[0])
	require.Equal(t, 12, b.Peaks()[0])

	lines := strings.Split(plainEqualizer().Render(&b), "\n")
	mid := []rune(lines[1])[len(margin):]
	assert.Equal(t, '▂', mid[0])

	for range 3 {
		b.Tick(make([]float64, NumBars))
	}
	require.Equal(t, 4, b.Levels()[0])
	require.Equal(t, 10, b.Peaks()[0])
	lines = strings.Split(plainEqualizer().Render(&b), "\n")
	mid = []rune(lines[1])[len(margin):]
	bottom := []rune(lines[2])[len(margin):]
	assert.Equal(t, '▔', mid[0])
	assert.Equal(t, '▄', bottom[0])
}

func testEqualizer(p termenv.Profile) *Equalizer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(p)
	return newEqualizer(r)
}

func plainEqualizer() *Equalizer {
	return testEqualizer(termenv.Ascii)
}

func TestRenderColors(t *testing.T) {
	var b Bars
	b.Start()
	b.Tick(full(1))

	out := testEqualizer(termenv.TrueColor).Render(&b)
	assert.Contains(t, out, "\x1b[38;2;255;0;0m")
	assert.Contains(t, out, "\x1b[38;2;0;0;255m")
	assert.Contains(t, out, "\x1b[0m")
}

func TestRenderInactiveIsFaint(t *testing.T) {
	var b Bars
	out := testEqualizer(termenv.TrueColor).Render(&b)
	assert.Contains(t, out, "\x1b[2m")
	assert.Contains(t, out, strings.Repeat("▁", NumBars))
}

func TestSpectralColor(t *testing.T) {
	assert.Equal(t, "#ff0000", spectralColor(0, NumBars))
	assert.Equal(t, "#0000ff", spectralColor(NumBars-1, NumBars))
	assert.Equal(t, "#00ff00", spectralColor(2, 5))
	assert.Equal(t, "#ff0000", spectralColor(0, 1))
}
