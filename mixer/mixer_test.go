// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ik5/spatialpbx/playback"
	"github.com/ik5/spatialpbx/spatial"
)

const rate = 1000

func constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newField() *spatial.Field {
	att := spatial.Attenuation{Model: spatial.Inverse, RefDistance: 1, MaxDistance: 15, Rolloff: 1}
	// emitter 0 at (0, 2) straight ahead of a listener facing +z
	return spatial.NewField(4, 2, math.Pi/2, att)
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type recorder struct{ got []playback.Trigger }

func (r *recorder) fn(t playback.Trigger) { r.got = append(r.got, t) }

func TestVoice_Triggers(t *testing.T) {
	t.Parallel()

	v := NewVoice(constant(10*rate, 0.5), rate)
	rec := &recorder{}
	v.Watch(2*time.Second, rec.fn)

	if err := v.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	buf := make([]float32, rate)

	for range 7 {
		v.read(buf)
	}
	if len(rec.got) != 0 {
		t.Fatalf("triggers at 7s = %v, want none", rec.got)
	}

	v.read(buf)
	if diff := cmp.Diff([]playback.Trigger{playback.NearEnd}, rec.got); diff != "" {
		t.Fatalf("triggers at 8s mismatch (-want +got):\n%s", diff)
	}

	v.read(buf)
	if n, done := v.read(buf); n != rate || !done {
		t.Fatalf("last read = %d frames done %v, want %d done", n, done, rate)
	}
	if diff := cmp.Diff([]playback.Trigger{playback.NearEnd, playback.End}, rec.got); diff != "" {
		t.Fatalf("triggers at end mismatch (-want +got):\n%s", diff)
	}
	if !v.Ended() || v.Playing() {
		t.Error("voice still playing after the end")
	}

	if n, done := v.read(buf); n != 0 || done {
		t.Errorf("read after end = %d done %v, want 0", n, done)
	}
	if err := v.Play(); err != nil {
		t.Errorf("Play() on ended voice error = %v", err)
	}
	v.Pause()
	if len(rec.got) != 2 {
		t.Errorf("end fired again: %v", rec.got)
	}
}

func TestVoice_ShortTrackFiresNearEndImmediately(t *testing.T) {
	t.Parallel()

	v := NewVoice(constant(rate, 0.1), rate)
	rec := &recorder{}
	v.Watch(12*time.Second, rec.fn)
	_ = v.Play()

	v.read(make([]float32, 10))
	if diff := cmp.Diff([]playback.Trigger{playback.NearEnd}, rec.got); diff != "" {
		t.Errorf("triggers mismatch (-want +got):\n%s", diff)
	}
}

func TestVoice_PausedDoesNotAdvance(t *testing.T) {
	t.Parallel()

	v := NewVoice(constant(rate, 0.1), rate)
	if n, _ := v.read(make([]float32, 100)); n != 0 {
		t.Errorf("read before Play = %d, want 0", n)
	}
	if v.Position() != 0 {
		t.Errorf("Position() = %v, want 0", v.Position())
	}

	_ = v.Play()
	v.read(make([]float32, 250))
	v.Pause()
	v.read(make([]float32, 250))
	if got := v.Position(); got != 250*time.Millisecond {
		t.Errorf("Position() = %v, want 250ms", got)
	}
	if got := v.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
}

func TestVoice_SeekAndClose(t *testing.T) {
	t.Parallel()

	v := NewVoice(constant(4*rate, 0.1), rate)
	v.Seek(3 * time.Second)
	if got := v.Position(); got != 3*time.Second {
		t.Errorf("Position() = %v, want 3s", got)
	}
	v.Seek(time.Hour)
	if !v.Ended() {
		t.Error("Seek past the end did not end the voice")
	}

	if err := v.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := v.Play(); !errors.Is(err, ErrVoiceClosed) {
		t.Errorf("Play() after Close error = %v", err)
	}
}

func TestBus_ConnectErrors(t *testing.T) {
	t.Parallel()

	b := NewBus(rate, newField(), quiet())
	v := NewVoice(constant(10, 0), rate)

	if err := b.Connect(0, v); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	tests := []struct {
		name string
		i    int
		r    playback.Resource
		want error
	}{
		{name: "busy", i: 0, r: NewVoice(nil, rate), want: ErrSlotBusy},
		{name: "unknown emitter", i: 9, r: NewVoice(nil, rate), want: ErrUnknownEmitter},
		{name: "rate mismatch", i: 1, r: NewVoice(nil, rate*2), want: ErrRateMismatch},
		{name: "foreign", i: 1, r: foreign{}, want: ErrForeignResource},
	}
	for _, tt := range tests {
		if err := b.Connect(tt.i, tt.r); !errors.Is(err, tt.want) {
			t.Errorf("%s: Connect() error = %v, want %v", tt.name, err, tt.want)
		}
	}

	if err := b.Connect(0, v); err != nil {
		t.Errorf("reconnecting the sounding voice error = %v", err)
	}
	if err := b.Disconnect(0, NewVoice(nil, rate)); err != nil || !b.Connected(0) {
		t.Fatalf("Disconnect() of a voice not held error = %v, connected %v", err, b.Connected(0))
	}
	if err := b.Disconnect(0, v); err != nil || b.Connected(0) {
		t.Fatalf("Disconnect() error = %v, connected %v", err, b.Connected(0))
	}
	if err := b.Disconnect(0, v); err != nil {
		t.Errorf("second Disconnect() error = %v", err)
	}
	if err := b.Disconnect(-1, v); !errors.Is(err, ErrUnknownEmitter) {
		t.Errorf("Disconnect(-1) error = %v", err)
	}

	_ = b.Close()
	if err := b.Connect(1, v); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Connect() after Close error = %v", err)
	}
}

type foreign struct{ playback.Resource }

func TestBus_QueueHandsOffOnTheEndFrame(t *testing.T) {
	t.Parallel()

	b := NewBus(rate, newField(), quiet())
	cur := NewVoice(constant(150, 1), rate)
	next := NewVoice(constant(200, 0.5), rate)
	_ = cur.Play()
	if err := b.Connect(0, cur); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := b.Queue(0, next); err != nil {
		t.Fatalf("Queue() error = %v", err)
	}

	dst := make([]float32, 2*100)
	b.Process(dst)
	if next.Playing() {
		t.Fatal("queued voice started before the current one ended")
	}

	b.Process(dst)
	for f := range 100 {
		if dst[2*f] == 0 || dst[2*f+1] == 0 {
			t.Fatalf("frame %d silent across the handoff", f)
		}
	}
	if dst[0] == dst[2*99] {
		t.Error("second block never reached the queued voice")
	}
	if got := next.Position(); got != 50*time.Millisecond {
		t.Errorf("queued voice position = %v, want 50ms", got)
	}

	// the scheduler applies the transition later; both calls are no-ops
	if err := b.Disconnect(0, cur); err != nil || !b.Connected(0) {
		t.Fatalf("Disconnect() of the played out voice error = %v, connected %v", err, b.Connected(0))
	}
	if err := b.Connect(0, next); err != nil {
		t.Errorf("Connect() of the promoted voice error = %v", err)
	}
}

func TestBus_QueueWaitsWhilePaused(t *testing.T) {
	t.Parallel()

	b := NewBus(rate, newField(), quiet())
	cur := NewVoice(constant(50, 1), rate)
	next := NewVoice(constant(50, 1), rate)
	_ = b.Connect(0, cur)
	_ = b.Queue(0, next)

	b.Process(make([]float32, 2*100))
	if next.Playing() || next.Position() != 0 {
		t.Error("queued voice started behind a paused one")
	}

	if err := b.Disconnect(0, next); err != nil {
		t.Fatalf("Disconnect() of the queued voice error = %v", err)
	}
	_ = cur.Play()
	b.Process(make([]float32, 2*100))
	if next.Playing() {
		t.Error("dequeued voice still handed off")
	}
	if err := b.Queue(0, NewVoice(nil, rate*2)); !errors.Is(err, ErrRateMismatch) {
		t.Errorf("Queue() rate mismatch error = %v", err)
	}
}

func TestBus_ProcessPansAndAttenuates(t *testing.T) {
	t.Parallel()

	f := newField()
	b := NewBus(rate, f, quiet())

	ahead := NewVoice(constant(rate, 1), rate)
	_ = ahead.Play()
	if err := b.Connect(0, ahead); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	dst := make([]float32, 2*64)
	b.Process(dst)

	// inverse law at distance 2 halves the level; centred pan splits it
	want := float32(0.5 * math.Sqrt2 / 2)
	if math.Abs(float64(dst[0]-want)) > 1e-6 || math.Abs(float64(dst[1]-want)) > 1e-6 {
		t.Errorf("frame 0 = (%v, %v), want (%v, %v)", dst[0], dst[1], want, want)
	}

	// turned a quarter to +x, the emitter is hard right
	b.SetListener(spatial.Pose{Rotation: math.Pi / 2})
	b.Process(dst)
	if math.Abs(float64(dst[0])) > 1e-6 || math.Abs(float64(dst[1])-0.5) > 1e-6 {
		t.Errorf("turned frame = (%v, %v), want (0, 0.5)", dst[0], dst[1])
	}

	b.SetMasterGain(0)
	b.Process(dst)
	for i, x := range dst {
		if x != 0 {
			t.Fatalf("dst[%d] = %v with master gain 0", i, x)
		}
	}
}

func TestBus_ProcessClampsSum(t *testing.T) {
	t.Parallel()

	att := spatial.Attenuation{Model: spatial.Inverse, RefDistance: 10, Rolloff: 1}
	b := NewBus(rate, spatial.NewField(4, 1, 0, att), quiet(), WithMasterGain(4))
	for i := range 4 {
		v := NewVoice(constant(rate, 1), rate)
		_ = v.Play()
		_ = b.Connect(i, v)
	}

	dst := make([]float32, 32)
	b.Process(dst)
	for i, x := range dst {
		if x > 1 || x < -1 {
			t.Fatalf("dst[%d] = %v outside [-1, 1]", i, x)
		}
	}
}

func TestBus_Loudness(t *testing.T) {
	t.Parallel()

	b := NewBus(rate, newField(), quiet(), WithTapWindow(256))
	if got := b.Loudness(0); got != 0 {
		t.Errorf("Loudness() of a never connected emitter = %v, want 0", got)
	}
	if got := b.Loudness(42); got != 0 {
		t.Errorf("Loudness(42) = %v, want 0", got)
	}

	v := NewVoice(constant(rate, 0.5), rate)
	_ = v.Play()
	_ = b.Connect(1, v)
	b.Process(make([]float32, 2*256))

	// the tap is taken before attenuation
	want := (20*math.Log10(0.5) + 60) / 60
	if got := b.Loudness(1); math.Abs(got-want) > 1e-3 {
		t.Errorf("Loudness(1) = %v, want %v", got, want)
	}
	if got := b.Loudness(2); got != 0 {
		t.Errorf("Loudness(2) = %v, want 0", got)
	}
}

// The scheduler drives real voices through the bus: the media clock
// advances only as the bus renders.
func TestBus_DrivesScheduler(t *testing.T) {
	t.Parallel()

	const (
		n        = 4
		trackLen = 20 * time.Second
	)
	ctx := context.Background()
	b := NewBus(rate, newField(), quiet())
	loader := playback.LoaderFunc(func(context.Context, int, int) (playback.Resource, error) {
		return NewVoice(constant(int(trackLen.Seconds())*rate, 0.2), rate), nil
	})

	s, err := playback.NewScheduler(n, 3, loader, b,
		playback.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		playback.WithRunner(func(f func()) { f() }))
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	defer s.Destroy()

	if err := s.Initialize(ctx, 0); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	ref := s.Current(0).(*Voice)
	ref.Seek(trackLen - playback.DefaultLeadTime - 10*time.Millisecond)
	block := make([]float32, 2*rate/10)

	b.Process(block)
	s.Process(ctx)
	if !s.NextPrepared() {
		t.Fatal("next not prepared at the lead time")
	}

	ref.Seek(trackLen)
	b.Process(block)
	s.Process(ctx)
	if s.Track() != 1 || s.Next(0) != nil {
		t.Fatalf("after end: track %d, next %v", s.Track(), s.Next(0))
	}
	for i := range n {
		if !b.Connected(i) {
			t.Errorf("emitter %d disconnected after transition", i)
		}
	}

	b.Process(block)
	if s.Current(0).Position() == 0 {
		t.Error("new track did not start sounding")
	}

	_ = s.Destroy()
	for i := range n {
		if b.Connected(i) {
			t.Errorf("emitter %d connected after Destroy", i)
		}
	}
}

func BenchmarkBus_Process(b *testing.B) {
	bus := NewBus(48000, spatial.NewField(5, 5, 0, spatial.Attenuation{RefDistance: 1, Rolloff: 1}), quiet())
	for i := range 5 {
		v := NewVoice(constant(48000*60, 0.1), 48000)
		_ = v.Play()
		_ = bus.Connect(i, v)
	}
	dst := make([]float32, 2*512)

	for b.Loop() {
		bus.Process(dst)
	}
}
