// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/spatialpbx/audio"
	"github.com/ik5/spatialpbx/internal/pcm"
)

const formatPCM = 1

// pcmReader is the subset of the go-audio decoder the stream uses.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type stream struct {
	dec        pcmReader
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
		return n, fmt.Errorf("decoding wav samples: %w", err)
	case n == 0 || n < len(dst):
		return n, io.EOF
	}

	return n, err
}

type Decoder struct{}

// Decode parses the RIFF header of r and returns a stream over its PCM
// data. Inputs that cannot seek are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, ErrOnlyPCMSupported
	}

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	frames := int64(-1)
	if size := dec.PCMLen(); size > 0 {
		frames = size / int64(depth/8*format.NumChannels)
	}

	return &stream{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   depth,
		frames:     frames,
	}, nil
}
