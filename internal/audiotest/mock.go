// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds deterministic audio fixtures shared by tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Waveform returns the value of channel ch at frame index i.
type Waveform func(i, ch int) float32

// Source generates a fixed number of frames from a Waveform. It satisfies
// audio.Source without importing it.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Waveform
	closed   bool
}

// NewSource creates a source of frames frames per channel.
func NewSource(rate, channels, frames int, wave Waveform) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, wave: wave}
}

// Silence generates zeros.
func Silence(rate, channels, frames int) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return 0 })
}

// Sine generates a full-scale sine of freq Hz on every channel.
func Sine(rate, channels, frames int, freq float64) *Source {
	return NewSource(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	})
}

// Constant generates v on every sample.
func Constant(rate, channels, frames int, v float32) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return v })
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Closed() bool    { return s.closed }

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Reset rewinds the generator.
func (s *Source) Reset() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}

// Collect drains src into a single slice. It stops at the first error and
// reports it unless it is io.EOF.
func Collect(src interface {
	ReadSamples([]float32) (int, error)
}) ([]float32, error) {
	var out []float32
	buf := make([]float32, 4096)

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// WAV16 encodes interleaved int16 samples as a canonical 44-byte header
// PCM WAV file.
func WAV16(rate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate*channels*2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	_ = binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// ToneWAV16 renders a mono sine of freq Hz at amplitude amp as WAV bytes.
func ToneWAV16(rate, frames int, freq, amp float64) []byte {
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return WAV16(rate, 1, samples)
}
