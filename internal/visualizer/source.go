package visualizer

import "math/rand/v2"

// Source supplies raw band levels in 0..1 for one frame. An empty or short
// result means no data is available.
type Source func() []float64

// Random produces plausible looking bands when no spectrum is available:
// each band is silent half the time, and lower bands run louder.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random seeded with seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Bands returns NumBars random levels.
func (r *Random) Bands() []float64 {
	out := make([]float64, NumBars)
	for i := range out {
		if r.rng.Float64() > 0.5 {
			weight := 1 - float64(i)/NumBars*0.4
			out[i] = r.rng.Float64() * weight
		}
	}
	return out
}

// Frame returns src's bands when it has a full set, else fallback's.
func Frame(src Source, fallback *Random) []float64 {
	if src != nil {
		if bands := src(); len(bands) >= NumBars {
			return bands[:NumBars]
		}
	}
	return fallback.Bands()
}
