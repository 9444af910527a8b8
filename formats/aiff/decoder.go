// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	goaiff "github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/spatialpbx/audio"
	"github.com/ik5/spatialpbx/internal/pcm"
)

// aiffReader is the subset of the go-audio decoder the stream uses.
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type stream struct {
	dec        aiffReader
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	ints       *goaudio.IntBuffer
}

func (s *stream) SampleRate() int { return s.sampleRate }
func (s *stream) Channels() int   { return s.channels }
func (s *stream) Frames() int64   { return s.frames }
func (s *stream) Close() error    { return nil }

func (s *stream) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.ints == nil || cap(s.ints.Data) < len(dst) {
		s.ints = &goaudio.IntBuffer{Data: make([]int, len(dst))}
	}
	s.ints.Data = s.ints.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.ints)
	for i, v := range s.ints.Data[:n] {
		dst[i] = pcm.FromInt(v, s.bitDepth)
	}

	switch {
	case err != nil && err != io.EOF:
		return n, fmt.Errorf("decoding aiff samples: %w", err)
	case n < len(dst):
		return n, io.EOF
	}

	return n, err
}

type Decoder struct{}

// Decode reads the COMM chunk of r and returns a stream over its sound
// data. go-audio needs to seek, so plain readers are buffered in memory.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := goaiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return &stream{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   depth,
		frames:     int64(dec.NumSampleFrames),
	}, nil
}
