package audio

import (
	"encoding/binary"
	"io"

	"github.com/gopxl/beep/v2"
)

// resampleQuality is the beep interpolation window size.
const resampleQuality = 4

// pcmStreamer adapts an interleaved 16-bit reader to beep.Streamer.
type pcmStreamer struct {
	r        io.Reader
	channels int
	buf      []byte
	err      error
}

func (s *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	frameBytes := s.channels * BytesPerSample
	need := len(samples) * frameBytes
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.r, buf)
	frames := n / frameBytes
	for i := range frames {
		frame := buf[i*frameBytes:]
		l := float64(int16(binary.LittleEndian.Uint16(frame))) / 32768
		r := l
		if s.channels > 1 {
			r = float64(int16(binary.LittleEndian.Uint16(frame[2:]))) / 32768
		}
		samples[i] = [2]float64{l, r}
	}
	if err != nil {
		if err != io.EOF && err != io.ErrUnexpectedEOF {
			s.err = err
		} else if frames == 0 {
			s.err = io.EOF
		}
	}
	return frames, frames > 0
}

func (s *pcmStreamer) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// streamReader renders a beep.Streamer back to 16-bit stereo bytes.
type streamReader struct {
	s       beep.Streamer
	samples [][2]float64
	done    bool
}

func (r *streamReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if cap(r.samples) < frames {
		r.samples = make([][2]float64, frames)
	}
	samples := r.samples[:frames]

	n, ok := r.s.Stream(samples)
	if !ok {
		r.done = true
		if err := r.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	for i := range n {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(clampInt16(int(samples[i][0]*32767))))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(clampInt16(int(samples[i][1]*32767))))
	}
	return n * 4, nil
}

// StereoAt returns a reader yielding 16-bit stereo at outRate from r, which
// yields 16-bit PCM with the given channel count and rate. When no conversion
// is needed r is returned unchanged.
func StereoAt(r io.Reader, channels, inRate, outRate int) io.Reader {
	if channels == 2 && inRate == outRate {
		return r
	}
	var s beep.Streamer = &pcmStreamer{r: r, channels: channels}
	if inRate != outRate {
		s = beep.Resample(resampleQuality, beep.SampleRate(inRate), beep.SampleRate(outRate), s)
	}
	return &streamReader{s: s}
}
