package spectrum

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by Analyze when no track is loaded.
var ErrNotReady = errors.New("spectrum: no track loaded")

// DecodeError reports a track that could not be decoded for analysis.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("spectrum: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrSuperseded is returned by Load when a newer Load or Unload replaced it
// before decoding finished.
var ErrSuperseded = errors.New("spectrum: load superseded")
