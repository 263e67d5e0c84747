package ui

import "github.com/charmbracelet/harmonica"

// springValue eases a displayed value toward a target once per frame, so
// the progress bar glides between the half-second position polls.
type springValue struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newSpringValue(fps int) springValue {
	return springValue{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
}

func (s *springValue) step(target float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}

// snap jumps to v without animating.
func (s *springValue) snap(v float64) {
	s.pos, s.vel = v, 0
}
