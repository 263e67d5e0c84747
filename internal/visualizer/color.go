package visualizer

import colorful "github.com/lucasb-eyer/go-colorful"

// spectrumStops run from bass to treble.
var spectrumStops = []colorful.Color{
	{R: 1},       // red
	{R: 1, G: 1}, // yellow
	{G: 1},       // green
	{G: 1, B: 1}, // cyan
	{B: 1},       // blue
}

// spectralColor returns the hex color of band i of n on the bass-to-treble
// gradient.
func spectralColor(i, n int) string {
	t := float64(i) / float64(max(n-1, 1))
	segments := len(spectrumStops) - 1
	pos := t * float64(segments)
	seg := min(int(pos), segments-1)
	return spectrumStops[seg].BlendRgb(spectrumStops[seg+1], pos-float64(seg)).Hex()
}
