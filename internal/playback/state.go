// Package playback is the transport state machine of the player: which
// track is current, whether it is playing, where it is, and when it ended.
package playback

import "github.com/olivier-w/retroamp/internal/track"

// State is the transport state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// DefaultVolume is the volume of a new Machine.
const DefaultVolume = 0.8

// Snapshot is a read-only copy of the machine's state.
type Snapshot struct {
	State    State
	Current  *track.Track // nil when nothing is loaded
	Position float64      // seconds
	Volume   float64      // 0..1
	Tracks   []track.Track
	Index    int // -1 when no track from Tracks is selected
}

func (s Snapshot) IsPlaying() bool { return s.State == Playing }
func (s Snapshot) IsPaused() bool  { return s.State == Paused }
func (s Snapshot) IsStopped() bool { return s.State == Stopped }

// HasNext reports whether a track follows Index in Tracks.
func (s Snapshot) HasNext() bool {
	return s.Index < len(s.Tracks)-1
}

// HasPrevious reports whether a track precedes Index in Tracks.
func (s Snapshot) HasPrevious() bool {
	return s.Index > 0
}

// Progress is Position as a fraction of the current track's duration.
func (s Snapshot) Progress() float64 {
	if s.Current == nil || s.Current.Duration <= 0 {
		return 0
	}
	return max(0, min(s.Position/s.Current.Duration, 1))
}

func (s Snapshot) clone() Snapshot {
	c := s
	if s.Current != nil {
		cur := *s.Current
		c.Current = &cur
	}
	c.Tracks = append([]track.Track(nil), s.Tracks...)
	return c
}
