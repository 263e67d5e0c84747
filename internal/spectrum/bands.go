package spectrum

import "math"

const (
	// FFTSize is the analysis window length in samples.
	FFTSize = 2048
	// NumBands is the number of log-spaced output bands.
	NumBands = 32

	minFreq = 20.0
	maxFreq = 18000.0
	dbFloor = -60.0
	epsilon = 1e-10
)

// Band is an inclusive range of FFT bins.
type Band struct {
	Lo, Hi int
}

// BandTable maps NumBands log-spaced frequency ranges between 20 Hz and
// min(18 kHz, nyquist) onto bins of a FFTSize transform. Bin 0 (DC) is never
// part of a band.
func BandTable(sampleRate int) []Band {
	table := make([]Band, NumBands)
	if sampleRate <= 0 {
		for i := range table {
			table[i] = Band{Lo: 1, Hi: 1}
		}
		return table
	}

	top := math.Min(maxFreq, float64(sampleRate)/2)
	ratio := top / minFreq
	for i := range table {
		lo := minFreq * math.Pow(ratio, float64(i)/NumBands)
		hi := minFreq * math.Pow(ratio, float64(i+1)/NumBands)
		b := Band{Lo: freqToBin(lo, sampleRate), Hi: freqToBin(hi, sampleRate)}
		if b.Hi < b.Lo {
			b.Hi = b.Lo
		}
		table[i] = b
	}
	return table
}

func freqToBin(freq float64, sampleRate int) int {
	bin := int(freq * FFTSize / float64(sampleRate))
	return max(1, min(bin, FFTSize/2-1))
}

// levels averages mags over each band and maps the result from
// dbFloor..0 dB onto 0..1.
func levels(mags []float64, table []Band, out []float64) {
	for i, b := range table {
		sum := 0.0
		for k := b.Lo; k <= b.Hi; k++ {
			sum += mags[k]
		}
		out[i] = normalizeDB(sum / float64(b.Hi-b.Lo+1))
	}
}

func normalizeDB(avg float64) float64 {
	db := dbFloor
	if avg != 0 {
		db = 20 * math.Log10(avg+epsilon)
	}
	v := (db - dbFloor) / -dbFloor
	return max(0, min(v, 1))
}
