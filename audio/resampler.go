// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/spatialpbx/internal/pcm"
)

const maxEmptyReads = 100

// Resampler converts a Source to another sample rate with Catmull-Rom
// interpolation, preserving the channel count. When downsampling a one-pole
// low-pass is applied to the input to tame aliasing.
type Resampler struct {
	src      Source
	channels int
	rate     int
	step     float64 // source frames per output frame

	in     []float32 // buffered source samples
	inPos  int       // next unread frame in in
	inLen  int       // frames held in in
	srcEOF bool

	// hist holds source frames center-1 .. center+2, edges clamped.
	hist   [4][]float32
	center int
	known  int // real source frames pulled so far
	frac   float64
	primed bool

	lowpass bool
	alpha   float32
	state   []float32
}

// NewResampler wraps src so that it produces dstRate samples per second.
func NewResampler(src Source, dstRate int) *Resampler {
	ch := max(src.Channels(), 1)
	r := &Resampler{
		src:      src,
		channels: ch,
		rate:     dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		in:       make([]float32, 1024*ch),
		state:    make([]float32, ch),
	}

	if r.step > 1 {
		r.lowpass = true
		r.alpha = 0.5
	}

	for i := range r.hist {
		r.hist[i] = make([]float32, ch)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}
	return nil
}

// pull copies the next source frame into dst. It reports false once the
// source is exhausted.
func (r *Resampler) pull(dst []float32) (bool, error) {
	for empty := 0; r.inPos >= r.inLen; empty++ {
		if r.srcEOF {
			return false, nil
		}
		if empty >= maxEmptyReads {
			return false, io.ErrNoProgress
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n/r.channels

		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("reading source: %w", err)
		}
	}

	frame := r.in[r.inPos*r.channels : (r.inPos+1)*r.channels]
	r.inPos++

	if r.lowpass {
		if r.known == 0 {
			copy(r.state, frame)
		}
		for c, x := range frame {
			r.state[c] = r.alpha*x + (1-r.alpha)*r.state[c]
		}
		frame = r.state
	}

	copy(dst, frame)
	r.known++

	return true, nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.pull(r.hist[1])
	if err != nil || !ok {
		return err
	}
	copy(r.hist[0], r.hist[1])

	for i := 2; i < 4; i++ {
		ok, err := r.pull(r.hist[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.hist[i], r.hist[i-1])
		}
	}

	return nil
}

func (r *Resampler) advance() error {
	r.hist[0], r.hist[1], r.hist[2], r.hist[3] = r.hist[1], r.hist[2], r.hist[3], r.hist[0]
	r.center++

	ok, err := r.pull(r.hist[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.hist[3], r.hist[2])
	}

	return nil
}

// ReadSamples produces interleaved samples at the target rate. len(dst) must
// be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written+r.channels <= len(dst) {
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return written, err
			}
		}

		if r.center >= r.known {
			return written, io.EOF
		}

		f := float32(r.frac)
		for c := range r.channels {
			dst[written+c] = pcm.Cubic(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], f)
		}

		written += r.channels
		r.frac += r.step
	}

	return written, nil
}
