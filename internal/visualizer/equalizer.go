package visualizer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	blocks   = []rune(" ▁▂▃▄▅▆▇█")
	peakChar = "▔"
	idleChar = "▁"
)

const margin = "  "

// Equalizer draws Bars as Rows lines of colored block characters.
type Equalizer struct {
	idle  lipgloss.Style
	bands [NumBars]lipgloss.Style
	cells [NumBars][StepsPerRow + 1]string
	peaks [NumBars]string
}

// NewEqualizer returns an Equalizer for the terminal's color support.
func NewEqualizer() *Equalizer {
	return newEqualizer(lipgloss.DefaultRenderer())
}

func newEqualizer(r *lipgloss.Renderer) *Equalizer {
	e := &Equalizer{idle: r.NewStyle().Faint(true)}
	for i := range e.bands {
		e.bands[i] = r.NewStyle().Foreground(lipgloss.Color(spectralColor(i, NumBars)))
		e.cells[i][0] = " "
		for h := 1; h <= StepsPerRow; h++ {
			e.cells[i][h] = e.bands[i].Render(string(blocks[h]))
		}
		e.peaks[i] = e.bands[i].Render(peakChar)
	}
	return e
}

// Render returns Rows lines joined by newlines, top row first. Inactive bars
// render as a single dim baseline.
func (e *Equalizer) Render(b *Bars) string {
	if !b.Active() {
		return margin + e.idle.Render(strings.Repeat(idleChar, NumBars)) + margin
	}

	var sb strings.Builder
	for row := range Rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(margin)
		base := (Rows - 1 - row) * StepsPerRow
		for i := range NumBars {
			level := b.level[i] - base
			peak := b.peak[i] - base
			switch {
			case level > 0:
				sb.WriteString(e.cells[i][min(level, StepsPerRow)])
			case peak > 0 && peak <= StepsPerRow && b.peak[i] > b.level[i]:
				sb.WriteString(e.peaks[i])
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(margin)
	}
	return sb.String()
}
