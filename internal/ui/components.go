package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/olivier-w/retroamp/internal/playback"
)

func renderProgressBar(ratio float64, width int) string {
	if width < 10 {
		width = 10
	}
	ratio = max(0, min(ratio, 1))
	filled := int(ratio * float64(width))
	return barFilledStyle.Render(strings.Repeat("━", filled)) +
		barEmptyStyle.Render(strings.Repeat("─", width-filled))
}

func newVolumeGauge() progress.Model {
	return progress.New(
		progress.WithWidth(12),
		progress.WithoutPercentage(),
		progress.WithSolidFill("#4FC3F7"),
	)
}

func renderVolume(g progress.Model, vol float64) string {
	return fmt.Sprintf("vol %s %3d%%", g.ViewAs(vol), int(vol*100+0.5))
}

func stateIcon(s playback.State) string {
	switch s {
	case playback.Playing:
		return "▶"
	case playback.Paused:
		return "❚❚"
	default:
		return "■"
	}
}
