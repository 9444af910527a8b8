// SPDX-License-Identifier: EPL-2.0

package output

import (
	"encoding/binary"
	"math"
	"sync"
)

// frameBytes is one stereo float32 frame.
const frameBytes = 2 * 4

// Source renders interleaved stereo float32 frames into dst.
type Source interface {
	Process(dst []float32)
}

// StreamReader turns a Source into a little endian float32 byte stream.
// Reads always return whole frames; a read shorter than one frame returns 0.
type StreamReader struct {
	mu     sync.Mutex
	source Source
	buf    []float32
	frames int64
}

func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)

	for i, x := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(x))
	}
	r.frames += int64(frames)
	return frames * frameBytes, nil
}

// Frames is the number of frames rendered so far.
func (r *StreamReader) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *StreamReader) Close() error { return nil }
