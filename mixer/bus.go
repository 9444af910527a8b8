// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/spatialpbx/internal/pcm"
	"github.com/ik5/spatialpbx/meter"
	"github.com/ik5/spatialpbx/playback"
	"github.com/ik5/spatialpbx/spatial"
)

// Bus is the per-emitter audio graph: each connected voice is tapped for
// loudness, attenuated by distance, panned toward the listener and summed
// into a stereo output.
type Bus struct {
	mu       sync.Mutex
	rate     int
	field    *spatial.Field
	slots    []slot
	listener spatial.Pose
	gain     float32
	scratch  []float32
	closed   bool
	log      *slog.Logger
}

type slot struct {
	voice *Voice
	// queued starts on the frame voice plays out.
	queued *Voice
	tap    *meter.Tap
	meter  *meter.Meter
}

var _ playback.Graph = (*Bus)(nil)

type Option func(*Bus)

func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}

// WithMasterGain scales the summed output.
func WithMasterGain(g float64) Option {
	return func(b *Bus) {
		b.gain = float32(g)
	}
}

// WithTapWindow sets the loudness analysis window in samples.
func WithTapWindow(n int) Option {
	return func(b *Bus) {
		for i := range b.slots {
			b.slots[i].tap = meter.NewTap(n)
			b.slots[i].meter = meter.New(b.slots[i].tap)
		}
	}
}

// NewBus creates a bus running at rate Hz with one slot per emitter of
// field.
func NewBus(rate int, field *spatial.Field, opts ...Option) *Bus {
	b := &Bus{
		rate:  rate,
		field: field,
		slots: make([]slot, field.Len()),
		gain:  1,
		log:   slog.Default(),
	}
	for i := range b.slots {
		b.slots[i].tap = meter.NewTap(meter.DefaultWindow)
		b.slots[i].meter = meter.New(b.slots[i].tap)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) SampleRate() int       { return b.rate }
func (b *Bus) Field() *spatial.Field { return b.field }

// Connect routes r into emitter i's chain. r must be a *Voice at the bus
// rate and the emitter must be free, unless r is its queued successor or
// already the voice it sounds.
func (b *Bus) Connect(i int, r playback.Resource) error {
	v, ok := r.(*Voice)
	if !ok {
		return fmt.Errorf("%w: %T", ErrForeignResource, r)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(i, v); err != nil {
		return err
	}
	s := &b.slots[i]
	switch {
	case s.voice == v:
		return nil
	case s.voice != nil:
		return fmt.Errorf("%w: %d", ErrSlotBusy, i)
	}

	if s.queued == v {
		s.queued = nil
	}
	s.voice = v
	b.log.Debug("emitter connected", "emitter", i)
	return nil
}

// Queue sets v to follow emitter i's voice without a gap: Process starts
// it on the frame the current voice plays out. A later Queue replaces an
// earlier one.
func (b *Bus) Queue(i int, r playback.Resource) error {
	v, ok := r.(*Voice)
	if !ok {
		return fmt.Errorf("%w: %T", ErrForeignResource, r)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(i, v); err != nil {
		return err
	}
	b.slots[i].queued = v
	return nil
}

func (b *Bus) check(i int, v *Voice) error {
	switch {
	case b.closed:
		return ErrBusClosed
	case i < 0 || i >= len(b.slots):
		return fmt.Errorf("%w: %d", ErrUnknownEmitter, i)
	case v.rate != b.rate:
		return fmt.Errorf("%w: %d Hz into %d Hz", ErrRateMismatch, v.rate, b.rate)
	}
	return nil
}

// Disconnect detaches r from emitter i, whether it is sounding or queued.
// A resource the emitter does not hold is left as is.
func (b *Bus) Disconnect(i int, r playback.Resource) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.slots) {
		return fmt.Errorf("%w: %d", ErrUnknownEmitter, i)
	}
	v, ok := r.(*Voice)
	if !ok {
		return nil
	}

	s := &b.slots[i]
	if s.queued == v {
		s.queued = nil
	}
	if s.voice == v {
		s.voice = nil
		b.log.Debug("emitter disconnected", "emitter", i)
	}
	return nil
}

// Connected reports whether emitter i holds a voice.
func (b *Bus) Connected(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return i >= 0 && i < len(b.slots) && b.slots[i].voice != nil
}

// SetListener updates the pose used for attenuation and panning.
func (b *Bus) SetListener(p spatial.Pose) {
	b.mu.Lock()
	b.listener = p
	b.mu.Unlock()
}

func (b *Bus) Listener() spatial.Pose {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listener
}

func (b *Bus) SetMasterGain(g float64) {
	b.mu.Lock()
	b.gain = float32(g)
	b.mu.Unlock()
}

func (b *Bus) MasterGain() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(b.gain)
}

// Loudness returns emitter i's level in [0, 1]. Emitters that never sounded
// read 0.
func (b *Bus) Loudness(i int) float64 {
	if i < 0 || i >= len(b.slots) {
		return 0
	}
	return b.slots[i].meter.Level()
}

// Gains returns the left and right factors applied to emitter i for the
// current listener pose.
func (b *Bus) Gains(i int) (left, right float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gains(i)
}

func (b *Bus) gains(i int) (float64, float64) {
	e, ok := b.field.Emitter(i)
	if !ok {
		return 0, 0
	}
	g := b.field.Attenuation.Gain(e.Position.Sub(b.listener.Position).Len())
	l, r := spatial.Pan(b.listener, e.Position)
	return g * l, g * r
}

// Process renders interleaved stereo into dst. It runs on the audio thread
// and advances every connected voice's media clock.
func (b *Bus) Process(dst []float32) {
	clear(dst)
	frames := len(dst) / 2

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || frames == 0 {
		return
	}
	if cap(b.scratch) < frames {
		b.scratch = make([]float32, frames)
	}
	mono := b.scratch[:frames]

	for i := range b.slots {
		s := &b.slots[i]
		clear(mono)
		if s.voice != nil {
			n, done := s.voice.read(mono)
			if done && s.queued != nil {
				b.handoff(i, s, mono[n:])
			}
		}
		s.tap.Write(mono)
		if s.voice == nil {
			continue
		}

		l, r := b.gains(i)
		gl, gr := float32(l)*b.gain, float32(r)*b.gain
		for f, x := range mono {
			dst[2*f] += x * gl
			dst[2*f+1] += x * gr
		}
	}

	for i, x := range dst {
		dst[i] = pcm.Clamp(x)
	}
}

// handoff promotes the queued voice of s and renders its first frames
// into rest.
func (b *Bus) handoff(i int, s *slot, rest []float32) {
	next := s.queued
	s.voice, s.queued = next, nil
	if err := next.Play(); err != nil {
		b.log.Warn("queued voice failed to start", "emitter", i, "err", err)
		return
	}
	next.read(rest)
	b.log.Debug("emitter handed off", "emitter", i)
}

// Close detaches every voice. Later Process calls render silence.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.slots {
		b.slots[i].voice = nil
		b.slots[i].queued = nil
	}
	b.closed = true
	return nil
}
