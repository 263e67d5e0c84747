package spectrum

import "math"

// fft performs an in-place radix-2 Cooley-Tukey FFT on complex data.
// len(re) and len(im) must be equal and a power of 2.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := -2.0 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := range half {
				wr, wi := math.Cos(step*float64(k)), math.Sin(step*float64(k))
				a := start + k
				b := a + half
				tr := wr*re[b] - wi*im[b]
				ti := wr*im[b] + wi*re[b]
				re[b], im[b] = re[a]-tr, im[a]-ti
				re[a] += tr
				im[a] += ti
			}
		}
	}
}

// hann returns the n Hann window coefficients.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func magnitude(re, im float64) float64 {
	return math.Hypot(re, im)
}
