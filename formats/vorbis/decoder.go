// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/spatialpbx/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the subset of oggvorbis.Reader the stream uses.
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	// Read returns the number of interleaved values written, always a
	// multiple of Channels().
	Read([]float32) (int, error)
}

type stream struct {
	dec oggReader
}

func (s *stream) SampleRate() int { return s.dec.SampleRate() }
func (s *stream) Channels() int   { return s.dec.Channels() }
func (s *stream) Frames() int64   { return s.dec.Length() }
func (s *stream) Close() error    { return nil }

func (s *stream) ReadSamples(dst []float32) (int, error) {
	ch := s.dec.Channels()
	whole := len(dst) - len(dst)%ch
	if whole == 0 {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, audio.ErrInvalidDstSize
	}

	n, err := s.dec.Read(dst[:whole])
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("decoding vorbis packets: %w", err)
	}
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg vorbis stream: %w", err)
	}

	return &stream{dec: dec}, nil
}
