package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandTableBounds(t *testing.T) {
	rates := []int{0, 1, 100, 8000, 11025, 16000, 22050, 32000, 44100, 48000, 88200, 96000, 192000}
	for _, rate := range rates {
		table := BandTable(rate)
		require.Len(t, table, NumBands)
		for i, b := range table {
			assert.GreaterOrEqual(t, b.Lo, 1, "rate %d band %d", rate, i)
			assert.GreaterOrEqual(t, b.Hi, b.Lo, "rate %d band %d", rate, i)
			assert.Less(t, b.Hi, FFTSize/2, "rate %d band %d", rate, i)
		}
	}
}

func TestBandTableIsAscending(t *testing.T) {
	table := BandTable(44100)
	for i := 1; i < len(table); i++ {
		assert.GreaterOrEqual(t, table[i].Lo, table[i-1].Lo)
		assert.GreaterOrEqual(t, table[i].Hi, table[i-1].Hi)
	}
	// 18 kHz at 44.1 kHz lands on bin 835.
	assert.Equal(t, 835, table[NumBands-1].Hi)
}

func TestBandTableLowRateStopsAtNyquist(t *testing.T) {
	table := BandTable(8000)
	assert.Equal(t, FFTSize/2-1, table[NumBands-1].Hi)
}

func TestNormalizeDB(t *testing.T) {
	assert.Equal(t, 0.0, normalizeDB(0))
	assert.Equal(t, 0.0, normalizeDB(1e-5))
	assert.InDelta(t, 0.5, normalizeDB(0.0316227766), 1e-6) // -30 dB
	assert.InDelta(t, 1.0, normalizeDB(1), 1e-6)
	assert.Equal(t, 1.0, normalizeDB(10))
}

func TestLevelsAveragesInclusiveRange(t *testing.T) {
	mags := make([]float64, FFTSize/2)
	mags[4] = 3 * 0.0316227766
	table := []Band{{Lo: 4, Hi: 6}, {Lo: 7, Hi: 7}}
	out := make([]float64, 2)

	levels(mags, table, out)

	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.Equal(t, 0.0, out[1])
}
