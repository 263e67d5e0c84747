// Package audio decodes supported audio files to interleaved signed 16-bit
// little-endian PCM.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// BytesPerSample is the size of one output sample (16-bit).
const BytesPerSample = 2

// ErrUnsupportedFormat is returned for file extensions with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Decoder is implemented by all format-specific decoders. Reads yield
// interleaved 16-bit LE samples; Seek offsets are in output bytes.
type Decoder interface {
	io.ReadSeeker
	Length() int64 // total output bytes
	SampleRate() int
	ChannelCount() int
}

// NewDecoder picks a decoder for f by file extension.
func NewDecoder(f *os.File) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg", ".oga":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Open opens path and returns its decoder together with the underlying file,
// which the caller must close.
func Open(path string) (Decoder, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dec, err := NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return dec, f, nil
}

// Duration returns the playing time of dec in seconds, or 0 if unknown.
func Duration(dec Decoder) float64 {
	frameBytes := int64(dec.ChannelCount()) * BytesPerSample
	if dec.Length() <= 0 || frameBytes <= 0 || dec.SampleRate() <= 0 {
		return 0
	}
	return float64(dec.Length()/frameBytes) / float64(dec.SampleRate())
}

func clampInt16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// pcmState is the bookkeeping shared by the frame-oriented decoders: a
// carry-over buffer for partially consumed frames and the output position.
type pcmState struct {
	buf   []byte
	pos   int64
	total int64
}

// drain copies carried-over bytes into p.
func (s *pcmState) drain(p []byte) (int, bool) {
	if len(s.buf) == 0 {
		return 0, false
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	s.pos += int64(n)
	return n, true
}

// emit copies raw into p and keeps the remainder for the next Read.
func (s *pcmState) emit(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		s.buf = raw[n:]
	}
	s.pos += int64(n)
	return n
}

// target resolves a Seek request to a clamped output byte offset.
func (s *pcmState) target(offset int64, whence int) int64 {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.pos + offset
	case io.SeekEnd:
		pos = s.total + offset
	}
	if pos < 0 {
		pos = 0
	}
	if pos > s.total {
		pos = s.total
	}
	return pos
}

func (s *pcmState) moved(pos int64) (int64, error) {
	s.buf = nil
	s.pos = pos
	return pos, nil
}

// --- MP3 ---

type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Seek(offset int64, whence int) (int64, error) {
	return d.dec.Seek(offset, whence)
}
func (d *mp3Decoder) Length() int64     { return d.dec.Length() }
func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return 2 }

// --- WAV ---

type wavDecoder struct {
	pcmState
	file      *os.File
	dataStart int64
	rate      int
	channels  int
	depth     int   // source bits per sample
	srcFrame  int64 // source bytes per frame
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, depth)
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid WAV channel count %d", channels)
	}
	srcFrame := int64(channels) * int64(depth) / 8

	dataStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("getting PCM start position: %w", err)
	}

	frames := dec.PCMLen() / srcFrame
	return &wavDecoder{
		pcmState:  pcmState{total: frames * int64(channels) * BytesPerSample},
		file:      f,
		dataStart: dataStart,
		rate:      int(dec.SampleRate),
		channels:  channels,
		depth:     depth,
		srcFrame:  srcFrame,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}
	if d.pos >= d.total {
		return 0, io.EOF
	}

	width := d.depth / 8
	want := len(p) / BytesPerSample
	if want == 0 {
		want = 1
	}
	if remaining := int((d.total - d.pos) / BytesPerSample); want > remaining {
		want = remaining
	}
	src := make([]byte, want*width)
	n, err := io.ReadFull(d.file, src)
	samples := n / width
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, samples*BytesPerSample)
	for i := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(wavSample(src[i*width:], d.depth)))
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return d.emit(p, raw), err
}

// wavSample converts one little-endian source sample to 16-bit.
func wavSample(b []byte, depth int) int16 {
	switch depth {
	case 8:
		return int16((int(b[0]) - 128) << 8)
	case 16:
		return int16(binary.LittleEndian.Uint16(b))
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return clampInt16(int(s >> 8))
	default:
		return clampInt16(int(int32(binary.LittleEndian.Uint32(b)) >> 16))
	}
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	pos := d.target(offset, whence)
	frame := pos / (int64(d.channels) * BytesPerSample)
	if _, err := d.file.Seek(d.dataStart+frame*d.srcFrame, io.SeekStart); err != nil {
		return d.pos, err
	}
	return d.moved(pos)
}

func (d *wavDecoder) Length() int64     { return d.total }
func (d *wavDecoder) SampleRate() int   { return d.rate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

// --- FLAC ---

type flacDecoder struct {
	pcmState
	stream   *flac.Stream
	rate     int
	channels int
	bps      int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		pcmState: pcmState{total: int64(info.NSamples) * int64(channels) * BytesPerSample},
		stream:   stream,
		rate:     int(info.SampleRate),
		channels: channels,
		bps:      int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	frames := int(frame.Subframes[0].NSamples)
	raw := make([]byte, frames*d.channels*BytesPerSample)
	for i := range frames {
		for ch := range d.channels {
			s := int(frame.Subframes[ch].Samples[i])
			if d.bps > 16 {
				s >>= d.bps - 16
			} else if d.bps < 16 {
				s <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(clampInt16(s)))
		}
	}
	return d.emit(p, raw), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	pos := d.target(offset, whence)
	sample := uint64(pos / (int64(d.channels) * BytesPerSample))
	if _, err := d.stream.Seek(sample); err != nil {
		return d.pos, err
	}
	return d.moved(pos)
}

func (d *flacDecoder) Length() int64     { return d.total }
func (d *flacDecoder) SampleRate() int   { return d.rate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- Ogg Vorbis ---

type oggDecoder struct {
	pcmState
	reader   *oggvorbis.Reader
	rate     int
	channels int
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	return &oggDecoder{
		pcmState: pcmState{total: reader.Length() * int64(channels) * BytesPerSample},
		reader:   reader,
		rate:     reader.SampleRate(),
		channels: channels,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}

	want := len(p) / BytesPerSample
	if want < d.channels {
		want = d.channels
	}
	samples := make([]float32, want)
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*BytesPerSample)
	for i, s := range samples[:n] {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clampInt16(int(s*32767))))
	}
	return d.emit(p, raw), err
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	pos := d.target(offset, whence)
	if err := d.reader.SetPosition(pos / (int64(d.channels) * BytesPerSample)); err != nil {
		return d.pos, err
	}
	return d.moved(pos)
}

func (d *oggDecoder) Length() int64     { return d.total }
func (d *oggDecoder) SampleRate() int   { return d.rate }
func (d *oggDecoder) ChannelCount() int { return d.channels }
