// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/spatialpbx/audio"
)

// go-mp3 always emits 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = channels * 2
)

// mp3Reader is the subset of gomp3.Decoder the stream uses.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type stream struct {
	dec  mp3Reader
	buf  []byte
	tail int // bytes of an incomplete sample carried over
}

func (s *stream) SampleRate() int { return s.dec.SampleRate() }
func (s *stream) Channels() int   { return channels }
func (s *stream) Close() error    { return nil }

func (s *stream) Frames() int64 {
	if n := s.dec.Length(); n > 0 {
		return n / bytesPerFrame
	}
	return -1
}

func (s *stream) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		grown := make([]byte, need)
		copy(grown, s.buf[:s.tail])
		s.buf = grown
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf[s.tail:])
	n += s.tail

	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768
	}

	s.tail = copy(s.buf, s.buf[samples*2:n])

	if err != nil && !errors.Is(err, io.EOF) {
		return samples, fmt.Errorf("decoding mp3 frames: %w", err)
	}
	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}

	return &stream{dec: dec, buf: make([]byte, 8192)}, nil
}
