package playback

import "fmt"

// Output is the audio device the machine drives. Every call may fail.
type Output interface {
	Play(path string) error
	Pause() error
	Unpause() error
	Stop() error
	SetVolume(v float64) error
	// Position returns the playback position in seconds. Values <= 0 are
	// treated as unknown.
	Position() (float64, error)
	Seek(seconds float64) error
	// Busy reports whether audio is still being produced.
	Busy() (bool, error)
}

// OutputError is a failed Output call.
type OutputError struct {
	Op   string
	Path string // track path, if any
	Err  error
}

func (e *OutputError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}
