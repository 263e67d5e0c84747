package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
)

// ErrEmptyStream is returned when a file decodes to no samples.
var ErrEmptyStream = errors.New("no audio samples")

const readChunk = 64 * 1024

// PCM is a fully decoded signal.
type PCM struct {
	Samples    []int16 // interleaved by channel
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (p PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Mono averages each frame's channels into a single sample.
func (p PCM) Mono() []int16 {
	if p.Channels <= 1 {
		out := make([]int16, len(p.Samples))
		copy(out, p.Samples)
		return out
	}
	frames := p.Frames()
	out := make([]int16, frames)
	for i := range frames {
		sum := 0
		for ch := range p.Channels {
			sum += int(p.Samples[i*p.Channels+ch])
		}
		out[i] = int16(sum / p.Channels)
	}
	return out
}

// FileDecoder decodes whole files into memory.
type FileDecoder struct{}

// Decode reads path completely. It checks ctx between chunks so a superseded
// decode can stop early.
func (FileDecoder) Decode(ctx context.Context, path string) (PCM, error) {
	dec, f, err := Open(path)
	if err != nil {
		return PCM{}, err
	}
	defer f.Close()
	return ReadAll(ctx, dec)
}

// ReadAll drains dec into a PCM value.
func ReadAll(ctx context.Context, dec Decoder) (PCM, error) {
	pcm := PCM{SampleRate: dec.SampleRate(), Channels: dec.ChannelCount()}
	if n := dec.Length(); n > 0 {
		pcm.Samples = make([]int16, 0, n/BytesPerSample)
	}

	buf := make([]byte, readChunk)
	var carry []byte
	for {
		if err := ctx.Err(); err != nil {
			return PCM{}, err
		}
		n, err := dec.Read(buf)
		chunk := buf[:n]
		if len(carry) > 0 {
			chunk = append(carry, chunk...)
			carry = nil
		}
		whole := len(chunk) &^ 1
		for i := 0; i < whole; i += BytesPerSample {
			pcm.Samples = append(pcm.Samples, int16(binary.LittleEndian.Uint16(chunk[i:])))
		}
		if whole < len(chunk) {
			carry = []byte{chunk[whole]}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return PCM{}, err
		}
	}

	if len(pcm.Samples) == 0 {
		return PCM{}, ErrEmptyStream
	}
	return pcm, nil
}
